package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Pinger es lo que el Monitor necesita del pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor sondea la base de datos periódicamente y expone si está disponible.
// Arranca como no disponible hasta el primer ping exitoso.
type Monitor struct {
	db       Pinger
	interval time.Duration
	log      *logger.Logger
	notify   func(up bool)

	available atomic.Bool
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// NewMonitor crea el monitor. No sondea hasta Start o Check.
func NewMonitor(db Pinger, interval time.Duration, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	return &Monitor{
		db:       db,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnChange registra una función llamada tras cada ping con el estado resultante.
// Debe configurarse antes de Start.
func (m *Monitor) OnChange(fn func(up bool)) {
	m.notify = fn
}

// Available indica el resultado del último ping.
func (m *Monitor) Available() bool {
	return m.available.Load()
}

// Check hace un ping inmediato y actualiza el estado.
func (m *Monitor) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	err := m.db.Ping(pingCtx)
	up := err == nil
	prev := m.available.Swap(up)
	if m.notify != nil {
		m.notify(up)
	}
	switch {
	case up && !prev:
		m.log.Info().Msg("base de datos disponible")
	case !up && prev:
		m.log.Error().Err(err).Msg("base de datos no disponible")
	case !up:
		m.log.Debug().Err(err).Msg("base de datos sigue sin responder")
	}
	return up
}

// Start sondea en una goroutine hasta Stop o hasta que ctx termine.
func (m *Monitor) Start(ctx context.Context) {
	m.Check(ctx)
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Stop detiene el sondeo y espera a la goroutine. Solo válido después de Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}
