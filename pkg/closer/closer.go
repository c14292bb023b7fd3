// Package closer останавливает ресурсы приложения в обратном порядке регистрации.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/pkg/logger"
)

const defaultForcedTimeout = 2 * time.Second

// Func останавливает один ресурс.
type Func func(ctx context.Context) error

type step struct {
	name string
	fn   Func
}

// Closer потокобезопасно копит шаги остановки и выполняет их один раз (LIFO).
type Closer struct {
	mu            sync.Mutex
	steps         []step
	once          sync.Once
	err           error
	forcedTimeout time.Duration
	logger        logger.Logger
}

// NewCloser создает Closer. forcedTimeout задает время на принудительную остановку шагов,
// не успевших завершиться до отмены контекста Close.
func NewCloser(forcedTimeout time.Duration, logger logger.Logger) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
		logger:        logger,
	}
}

// Add регистрирует шаг остановки.
func (c *Closer) Add(name string, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, step{name: name, fn: fn})
}

// AddFunc регистрирует шаг без контекста и без ошибки (например, pool.Close).
func (c *Closer) AddFunc(name string, fn func()) {
	c.Add(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Close выполняет шаги по одному в обратном порядке. Если ctx отменяется раньше,
// оставшиеся шаги запускаются параллельно со своим таймаутом. Повторный вызов возвращает тот же результат.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		steps := c.steps
		c.mu.Unlock()

		var errs []error
		for i := len(steps) - 1; i >= 0; i-- {
			ok, err := c.run(ctx, steps[i])
			if !ok {
				errs = append(errs, c.forced(steps[:i+1])...)
				errs = append(errs, fmt.Errorf("shutdown interrupted after %d/%d steps: %w", len(steps)-1-i, len(steps), ctx.Err()))
				break
			}
			if err != nil {
				errs = append(errs, err)
			}
		}

		c.err = errors.Join(errs...)
	})

	return c.err
}

// run выполняет шаг, ok == false если контекст отменен раньше завершения шага.
func (c *Closer) run(ctx context.Context, s step) (bool, error) {
	done := make(chan error, 1)
	go func() {
		done <- s.fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Warnf("%s: stop failed: %v", s.name, err)
			return true, fmt.Errorf("%s: %w", s.name, err)
		}
		c.logger.Infof("%s stopped", s.name)
		return true, nil
	case <-ctx.Done():
		return false, nil
	}
}

func (c *Closer) forced(steps []step) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, s := range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s (forced): %w", s.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
