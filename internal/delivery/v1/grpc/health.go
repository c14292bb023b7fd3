package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/grocery-cart/pkg/logger"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// ServiceName используется в health-протоколе. Пустое имя отвечает за общий статус.
	ServiceName  = "grocery.cart.v1.CartService"
	probeTimeout = 2 * time.Second
)

// Probe проверяет одну внешнюю зависимость.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type statusSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// HealthChecker периодически проверяет зависимости и выставляет статус health-сервера.
type HealthChecker struct {
	setter statusSetter
	probes []Probe
	logger logger.Logger

	mu      sync.Mutex
	failing map[string]error
}

func NewHealthChecker(setter statusSetter, logger logger.Logger, probes ...Probe) *HealthChecker {
	return &HealthChecker{
		setter:  setter,
		probes:  probes,
		logger:  logger,
		failing: make(map[string]error),
	}
}

// AddProbe добавляет проверку. Вызывать до Run.
func (h *HealthChecker) AddProbe(p Probe) {
	h.probes = append(h.probes, p)
}

// CheckOnce выполняет все проверки и возвращает итоговый статус.
func (h *HealthChecker) CheckOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING

	for _, p := range h.probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(probeCtx)
		cancel()

		h.track(p.Name, err)
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	h.setter.SetServingStatus("", status)
	h.setter.SetServingStatus(ServiceName, status)

	return status
}

// Run проверяет зависимости каждые period до отмены контекста.
func (h *HealthChecker) Run(ctx context.Context, period time.Duration) {
	h.CheckOnce(ctx)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.CheckOnce(ctx)
		}
	}
}

// track логирует только смену состояния зависимости.
func (h *HealthChecker) track(name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, wasFailing := h.failing[name]
	switch {
	case err != nil && !wasFailing:
		h.failing[name] = err
		h.logger.Warnf("dependency %s is unhealthy: %v", name, err)
	case err == nil && wasFailing:
		delete(h.failing, name)
		h.logger.Infof("dependency %s recovered", name)
	}
}
