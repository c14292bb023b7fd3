// Package jitter считает задержки повторов со случайной добавкой, чтобы клиенты не повторяли запросы синхронно.
package jitter

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultFactor дает добавку до 50% от задержки.
const DefaultFactor = 0.5

// Duration возвращает d плюс случайную добавку в диапазоне [0, d*factor).
func Duration(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// Backoff считает экспоненциальную задержку с потолком Max. Нулевой Factor отключает случайную добавку.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
}

func NewBackoff(base, max time.Duration) Backoff {
	return Backoff{Base: base, Max: max, Factor: DefaultFactor}
}

// Delay возвращает задержку перед повтором номер attempt (с нуля). Потолок применяется до добавки.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}

	return Duration(d, b.Factor)
}

// Sleep ждет Delay(attempt) и возвращает false, если контекст отменен раньше.
func (b Backoff) Sleep(ctx context.Context, attempt int) bool {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
