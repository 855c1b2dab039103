package worker

import (
	"context"

	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/lmstfyx"
	"cover/m2sync/pkg/logger"
)

// Worker pairs one subscriber with one processor on a single queue.
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	shutdownCh chan struct{}
	logger     logger.Logger
}

func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) (Worker, error) {
	inputChan := make(chan *framework.Message, processorCfg.BufferSize)

	subscriber := framework.NewSubscriber(subscriberCfg, source, log)
	processor := framework.NewProcessor(processorCfg, proc, source, log)

	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: subscriber,
		processor:  processor,
		inputChan:  inputChan,
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start runs the worker and blocks until Shutdown completes.
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	if err := w.processor.Start(w.ctx, w.inputChan); err != nil {
		w.logger.Errorf(w.ctx, "[Worker] %s processor start failed: %v", w.name, err)
	}
	if err := w.subscriber.Start(w.ctx, w.inputChan); err != nil {
		w.logger.Errorf(w.ctx, "[Worker] %s subscriber start failed: %v", w.name, err)
	}

	<-w.shutdownCh
}

// Shutdown stops pulling, waits for the pullers, then drains what was
// already pulled.
func (w *WorkerInstance) Shutdown() {
	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	w.subscriber.Stop()
	w.subscriber.Wait()

	w.processor.SignalShutdown()
	w.processor.Wait()

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

func (w *WorkerInstance) GetName() string {
	return w.name
}
