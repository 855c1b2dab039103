package statusupdate

import (
	"context"

	"cover/m2sync/internal/business"
	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/errorutil"
)

// ActionType routes jobs to this handler.
const ActionType = "magento2_status_update"

// StatusSyncer executes one status sync.
type StatusSyncer interface {
	ExecuteSync(ctx context.Context, input *business.SyncInput) (*business.SyncReport, error)
}

// Handler posts the COVER status of one order to Magento2.
type Handler struct {
	*framework.BaseHandler
	service StatusSyncer
	input   business.SyncInput
}

// NewFactory returns the factory registered for ActionType.
func NewFactory(service StatusSyncer) framework.HandlerFactory {
	return func(ctx context.Context, base *framework.BaseHandler) (framework.BusinessHandler, error) {
		h := &Handler{BaseHandler: base, service: service}
		if err := base.DecodePayload(&h.input); err != nil {
			return nil, errorutil.NonRetriableWrap(err, "decode status update job failed")
		}
		if h.input.RequestID == "" && base.GetMeta() != nil {
			h.input.RequestID = base.GetMeta().RequestID
		}
		base.SetResulter(&reportResulter{})
		return h, nil
	}
}

// Handle runs the sync and wraps its report. The report is returned on
// failure too; the error decides whether the job is released or buried.
func (h *Handler) Handle(ctx context.Context) ([]byte, error) {
	chain := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.process,
	})
	err := chain.Run(ctx)
	h.SetOutput(h.GetResulter().Get(ctx))
	if err != nil {
		data, wrapErr := h.WrapErrorResponse(ctx, err)
		if wrapErr != nil {
			return nil, err
		}
		return data, err
	}
	return h.WrapResponse(ctx, h.GetOutput())
}

func (h *Handler) process(ctx context.Context) error {
	report, err := h.service.ExecuteSync(ctx, &h.input)
	if report != nil {
		if setErr := h.GetResulter().Set(ctx, report); setErr != nil {
			return setErr
		}
	}
	return err
}

// reportResulter keeps the last report as the response result.
type reportResulter struct {
	report *business.SyncReport
}

func (r *reportResulter) Set(ctx context.Context, data interface{}) error {
	report, ok := data.(*business.SyncReport)
	if !ok {
		return errorutil.NonRetriable("unexpected result type")
	}
	r.report = report
	return nil
}

func (r *reportResulter) Get(ctx context.Context) interface{} {
	if r.report == nil {
		return nil
	}
	return r.report
}
