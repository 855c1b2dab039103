package domains

import (
	"context"
	"time"

	"github.com/bitleak/lmstfy/client"

	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/errorutil"
	"cover/m2sync/pkg/lmstfyx"
	"cover/m2sync/pkg/logger"
)

// GetProcess returns the function the processor runs for every job.
func GetProcess(log logger.Logger, handlers map[string]framework.HandlerFactory) lmstfyx.Proc {
	return func(ctx context.Context, lmstfyJob *client.Job) *lmstfyx.JobResp {
		startTime := time.Now()

		base := &framework.BaseHandler{}
		if err := base.ParseJob(ctx, lmstfyJob.Data); err != nil {
			log.Errorf(ctx, "[GetProcess] parseJob failed: %v", err)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		meta := base.GetMeta()
		ctx = logger.WithTraceID(ctx, meta.RequestID)
		ctx = logger.WithActionType(ctx, meta.ActionType)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, request_id=%s, id=%s",
			meta.ActionType, meta.RequestID, meta.ID)

		factory, ok := handlers[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		var resp *lmstfyx.JobResp
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
					resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
				}
			}()

			handler, err := factory(ctx, base)
			if err != nil {
				log.Errorf(ctx, "[GetProcess] handler creation failed: %v", err)
				data, _ := base.WrapErrorResponse(ctx, err)
				resp = &lmstfyx.JobResp{Action: jobAction(err), Data: data}
				return
			}

			data, err := handler.Handle(ctx)
			resp = doJobReport(ctx, data, err, log)
		}()

		log.Infof(ctx, "[GetProcess] Processing complete: action=%s, duration=%v", resp.Action, time.Since(startTime))
		return resp
	}
}

// doJobReport turns the handler result into the queue action.
func doJobReport(ctx context.Context, data []byte, err error, log logger.Logger) *lmstfyx.JobResp {
	action := jobAction(err)
	if err != nil {
		log.Warnf(ctx, "[doJobReport] job failed (%s): %v", action, err)
	}
	return &lmstfyx.JobResp{
		Action: action,
		Data:   data,
	}
}

// jobAction acks successes, releases retriable failures and buries the rest.
func jobAction(err error) lmstfyx.JobRespStatus {
	switch {
	case err == nil:
		return lmstfyx.JobRespStatusSuccess
	case errorutil.IsRetryable(err):
		return lmstfyx.JobRespStatusRelease
	default:
		return lmstfyx.JobRespStatusBury
	}
}
