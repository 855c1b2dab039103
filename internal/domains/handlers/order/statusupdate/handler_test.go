package statusupdate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cover/m2sync/internal/business"
	"cover/m2sync/internal/framework"
	"cover/m2sync/pkg/errorutil"
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

func newBase(t *testing.T, data interface{}) *framework.BaseHandler {
	raw, err := framework.NewJob(framework.JobMeta{RequestID: "req-9", ActionType: ActionType}, data)
	require.NoError(t, err)
	base := &framework.BaseHandler{}
	require.NoError(t, base.ParseJob(context.Background(), raw))
	return base
}

func TestHandler_DecodesInlineDocuments(t *testing.T) {
	svc := &stubService{report: &business.SyncReport{RequestID: "req-9", Status: "DELIVERED"}}
	base := newBase(t, map[string]interface{}{
		"shop_url":       "https://shop.example",
		"cached_input":   map[string]interface{}{"order": map[string]interface{}{"order_id_unique": "1000245"}},
		"cover_response": map[string]interface{}{"order": map[string]interface{}{"error": map[string]interface{}{"error_code": 0}}},
	})

	h, err := NewFactory(svc)(context.Background(), base)
	require.NoError(t, err)

	data, err := h.Handle(context.Background())
	require.NoError(t, err)

	require.NotNil(t, svc.got)
	assert.Equal(t, "req-9", svc.got.RequestID)
	assert.NotNil(t, svc.got.CachedInput)
	assert.NotNil(t, svc.got.CoverResponse)

	var out struct {
		Result    business.SyncReport `json:"result"`
		Processed bool                `json:"processed"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Processed)
	assert.Equal(t, "DELIVERED", out.Result.Status)
}

func TestHandler_FailureKeepsReport(t *testing.T) {
	svc := &stubService{
		report: &business.SyncReport{RequestID: "req-9", Status: "ABORTED", Error: "missing order"},
		err:    errorutil.NonRetriable("status sync aborted"),
	}
	h, err := NewFactory(svc)(context.Background(), newBase(t, map[string]interface{}{"shop_url": "x"}))
	require.NoError(t, err)

	data, err := h.Handle(context.Background())

	require.Error(t, err)
	assert.False(t, errorutil.IsRetryable(err))
	var out struct {
		Error     *errorutil.Error    `json:"error"`
		Result    business.SyncReport `json:"result"`
		Processed bool                `json:"processed"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.False(t, out.Processed)
	require.NotNil(t, out.Error)
	assert.Equal(t, 400, out.Error.Code)
	assert.Equal(t, "ABORTED", out.Result.Status)
}

func TestHandler_RejectsBadPayload(t *testing.T) {
	base := newBase(t, []int{1, 2})

	_, err := NewFactory(&stubService{})(context.Background(), base)

	require.Error(t, err)
	assert.False(t, errorutil.IsRetryable(err))
}
