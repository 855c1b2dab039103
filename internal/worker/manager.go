package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/config"
	"cover/m2sync/pkg/lmstfyx"
	"cover/m2sync/pkg/logger"
)

// Manager owns every configured worker.
type Manager interface {
	Start() error
	Shutdown()
}

type ManagerInstance struct {
	ctx        context.Context
	cfg        *config.Config
	source     framework.MessageSource
	proc       lmstfyx.Proc
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	logger     logger.Logger
}

// NewManagerInstance builds a manager whose workers consume from source and
// run proc for every job.
func NewManagerInstance(cfg *config.Config, source framework.MessageSource, proc lmstfyx.Proc, log logger.Logger) (Manager, error) {
	if source == nil {
		return nil, fmt.Errorf("message source is required")
	}
	if proc == nil {
		return nil, fmt.Errorf("process function is required")
	}

	return &ManagerInstance{
		ctx:        context.Background(),
		cfg:        cfg,
		source:     source,
		proc:       proc,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		workers:    make([]Worker, 0, len(cfg.Workers)),
		logger:     log,
	}, nil
}

// Start launches all workers and blocks until Shutdown.
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	m.mu.Lock()
	if m.closing.Load() {
		m.mu.Unlock()
		return nil
	}
	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}
	m.mu.Unlock()

	m.logger.Infof(m.ctx, "[Manager] Start success")

	<-m.shutdownCh
	return nil
}

// Shutdown stops every worker once; later calls are no-ops.
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	m.mu.Lock()
	workers := append([]Worker(nil), m.workers...)
	m.mu.Unlock()

	for _, worker := range workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
		worker.Shutdown()
	}

	m.wg.Wait()
	close(m.shutdownCh)

	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}

// Closing reports whether Shutdown has been called.
func (m *ManagerInstance) Closing() bool {
	return m.closing.Load()
}

func (m *ManagerInstance) loadWorkers() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, workerCfg := range m.cfg.Workers {
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		procCfg := &framework.ProcessorConfig{
			QueueName:   workerCfg.QueueName,
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.source,
			m.proc,
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
