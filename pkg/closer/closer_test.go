package closer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

func TestCloseRunsInReverseOrder(t *testing.T) {
	c := NewCloser(0, logger.Nop{})

	var order []string
	for _, name := range []string{"db", "redis", "http"} {
		c.AddFunc(name, func() { order = append(order, name) })
	}

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := strings.Join(order, ","); got != "http,redis,db" {
		t.Fatalf("order = %s", got)
	}
}

func TestCloseCollectsErrorsAndRunsOnce(t *testing.T) {
	c := NewCloser(0, logger.Nop{})
	boom := errors.New("boom")

	calls := 0
	c.Add("kafka", func(context.Context) error {
		calls++
		return boom
	})
	c.AddFunc("db", func() { calls++ })

	err := c.Close(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "kafka") {
		t.Fatalf("err = %v, want step name", err)
	}

	if again := c.Close(context.Background()); again == nil || calls != 2 {
		t.Fatalf("second Close: err=%v calls=%d", again, calls)
	}
}

func TestCloseForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(time.Second, logger.Nop{})

	var (
		mu     sync.Mutex
		forced bool
	)
	c.AddFunc("first", func() {
		mu.Lock()
		forced = true
		mu.Unlock()
	})
	c.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	if err == nil || !strings.Contains(err.Error(), "interrupted") {
		t.Fatalf("err = %v, want interrupted", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !forced {
		t.Fatal("remaining step was not run")
	}
}
