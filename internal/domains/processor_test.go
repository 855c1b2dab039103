package domains

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cover/m2sync/internal/business"
	"cover/m2sync/internal/domains/handlers/order/statusupdate"
	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/errorutil"
	"cover/m2sync/pkg/lmstfyx"
	"cover/m2sync/pkg/logger"
)

type stubService struct {
	report *business.SyncReport
	err    error
	got    *business.SyncInput
}

func (s *stubService) ExecuteSync(ctx context.Context, input *business.SyncInput) (*business.SyncReport, error) {
	s.got = input
	return s.report, s.err
}

func newJob(t *testing.T, actionType string, data interface{}) *client.Job {
	raw, err := framework.NewJob(framework.JobMeta{RequestID: "req-1", ActionType: actionType, ID: "1000245"}, data)
	require.NoError(t, err)
	return &client.Job{ID: "job-1", Queue: "m2sync_status", Data: raw}
}

func TestGetProcess_Success(t *testing.T) {
	svc := &stubService{report: &business.SyncReport{RequestID: "req-1", Status: "DELIVERED", Attempts: 1}}
	proc := GetProcess(logger.NewNop(), NewHandlerMap(svc))

	resp := proc(context.Background(), newJob(t, statusupdate.ActionType, map[string]interface{}{
		"shop_url":        "https://shop.example",
		"shop_auth_token": "tok",
	}))

	require.NotNil(t, resp)
	assert.Equal(t, lmstfyx.JobRespStatusSuccess, resp.Action)
	require.NotNil(t, svc.got)
	assert.Equal(t, "req-1", svc.got.RequestID)
	assert.Equal(t, "https://shop.example", svc.got.ShopURL)

	var out framework.Response
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.True(t, out.Processed)
	assert.Nil(t, out.Error)
	assert.Equal(t, "req-1", out.Meta.RequestID)
}

func TestGetProcess_Actions(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want lmstfyx.JobRespStatus
	}{
		{"retriable releases", errorutil.Retriable("cache down"), lmstfyx.JobRespStatusRelease},
		{"non-retriable buries", errorutil.NonRetriable("missing order"), lmstfyx.JobRespStatusBury},
		{"unclassified buries", errors.New("boom"), lmstfyx.JobRespStatusBury},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{report: &business.SyncReport{RequestID: "req-1", Status: "ABORTED"}, err: tt.err}
			proc := GetProcess(logger.NewNop(), NewHandlerMap(svc))

			resp := proc(context.Background(), newJob(t, statusupdate.ActionType, map[string]interface{}{"shop_url": "x"}))

			assert.Equal(t, tt.want, resp.Action)
			var out framework.Response
			require.NoError(t, json.Unmarshal(resp.Data, &out))
			assert.False(t, out.Processed)
			require.NotNil(t, out.Error)
			assert.NotNil(t, out.Result)
		})
	}
}

func TestGetProcess_BadJobs(t *testing.T) {
	svc := &stubService{}
	proc := GetProcess(logger.NewNop(), NewHandlerMap(svc))

	t.Run("not json", func(t *testing.T) {
		resp := proc(context.Background(), &client.Job{ID: "job-1", Data: []byte("{")})
		assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
	})

	t.Run("unknown action type", func(t *testing.T) {
		resp := proc(context.Background(), newJob(t, "order_diagnose", map[string]interface{}{}))
		assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
	})

	t.Run("empty business data", func(t *testing.T) {
		resp := proc(context.Background(), newJob(t, statusupdate.ActionType, nil))
		assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
		assert.NotEmpty(t, resp.Data)
	})

	assert.Nil(t, svc.got)
}

func TestGetProcess_RecoversPanic(t *testing.T) {
	handlers := map[string]framework.HandlerFactory{
		"panics": func(ctx context.Context, base *framework.BaseHandler) (framework.BusinessHandler, error) {
			panic("nil map")
		},
	}
	proc := GetProcess(logger.NewNop(), handlers)

	resp := proc(context.Background(), newJob(t, "panics", map[string]interface{}{}))

	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}
