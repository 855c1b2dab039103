package framework

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cover/m2sync/pkg/errorutil"
)

func TestNewJob_RoundTrip(t *testing.T) {
	raw, err := NewJob(JobMeta{RequestID: "req-1", ActionType: "magento2_status_update", OrgID: "org", ID: "1000245"},
		map[string]string{"shop_url": "https://shop.example"})
	require.NoError(t, err)

	b := &BaseHandler{}
	require.NoError(t, b.ParseJob(context.Background(), raw))

	meta := b.GetMeta()
	assert.Equal(t, "req-1", meta.RequestID)
	assert.Equal(t, "magento2_status_update", meta.ActionType)
	assert.Equal(t, "org", meta.OrgID)
	assert.Equal(t, "1000245", meta.ID)
	assert.Equal(t, raw, b.GetRawData())

	var data map[string]string
	require.NoError(t, b.DecodePayload(&data))
	assert.Equal(t, "https://shop.example", data["shop_url"])
}

func TestNewJob_GeneratesRequestID(t *testing.T) {
	raw, err := NewJob(JobMeta{ActionType: "x"}, map[string]string{})
	require.NoError(t, err)

	b := &BaseHandler{}
	require.NoError(t, b.ParseJob(context.Background(), raw))
	assert.Len(t, b.GetMeta().RequestID, 36)
}

func TestParseJob_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{"not json", "{", "unmarshal job failed"},
		{"no payload", `{}`, "payload.data is nil"},
		{"no data", `{"payload":{}}`, "payload.data is nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&BaseHandler{}).ParseJob(context.Background(), []byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseJob_FillsMissingRequestID(t *testing.T) {
	b := &BaseHandler{}
	require.NoError(t, b.ParseJob(context.Background(), []byte(`{"payload":{"data":{"action_type":"x","data":{}}}}`)))
	assert.NotEmpty(t, b.GetMeta().RequestID)
}

func TestDecodePayload_Empty(t *testing.T) {
	b := &BaseHandler{}
	require.NoError(t, b.ParseJob(context.Background(), []byte(`{"payload":{"data":{"action_type":"x","data":null}}}`)))

	var v map[string]interface{}
	err := b.DecodePayload(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job data is empty")
}

func TestWrapErrorResponse_KeepsOutput(t *testing.T) {
	b := &BaseHandler{}
	require.NoError(t, b.ParseJob(context.Background(), []byte(`{"payload":{"data":{"request_id":"req-1","data":{}}}}`)))
	b.SetOutput(map[string]int{"attempts": 3})

	data, err := b.WrapErrorResponse(context.Background(), errorutil.Retriable("cache down"))
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.False(t, resp.Processed)
	require.NotNil(t, resp.Error)
	assert.True(t, resp.Error.Retryable)
	assert.Equal(t, "cache down", resp.Error.Message)
	assert.Equal(t, map[string]interface{}{"attempts": float64(3)}, resp.Result)
	assert.Equal(t, "req-1", resp.Meta.RequestID)
}

func TestWrapError(t *testing.T) {
	b := &BaseHandler{}
	cause := errors.New("eof")

	assert.ErrorIs(t, b.WrapError(cause, "read"), cause)
	assert.EqualError(t, b.WrapError(nil, "read"), "read")
}
