package framework

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"cover/m2sync/pkg/errorutil"
)

// BaseHandler carries the parsed job envelope and the response plumbing that
// every business handler shares.
type BaseHandler struct {
	meta       *JobMeta
	rawData    []byte
	bizPayload json.RawMessage
	output     interface{}
	resulter   Resulter
}

// Job is the standard queue envelope.
type Job struct {
	Payload *JobPayload `json:"payload"`
}

type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

type JobPayloadData struct {
	RequestID  string          `json:"request_id"`
	ActionType string          `json:"action_type"`
	OrgID      string          `json:"org_id"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
}

type JobMeta struct {
	RequestID  string `json:"request_id"`
	ActionType string `json:"action_type"`
	OrgID      string `json:"org_id"`
	ID         string `json:"id"`
}

// Response is what a handler produces for the callback queue.
type Response struct {
	Error     *errorutil.Error `json:"error"`
	Result    interface{}      `json:"result"`
	Processed bool             `json:"processed"`
	Meta      *JobMeta         `json:"meta,omitempty"`
}

// NewJob wraps business data into the standard envelope.
func NewJob(meta JobMeta, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal job data failed: %w", err)
	}
	if meta.RequestID == "" {
		meta.RequestID = uuid.New().String()
	}
	return json.Marshal(&Job{Payload: &JobPayload{Data: &JobPayloadData{
		RequestID:  meta.RequestID,
		ActionType: meta.ActionType,
		OrgID:      meta.OrgID,
		ID:         meta.ID,
		Data:       raw,
	}}})
}

// ParseJob decodes the envelope. A missing request id is replaced by a fresh UUID.
func (b *BaseHandler) ParseJob(ctx context.Context, rawData []byte) error {
	b.rawData = rawData

	var job Job
	if err := json.Unmarshal(rawData, &job); err != nil {
		return b.WrapError(err, "unmarshal job failed")
	}

	if job.Payload == nil || job.Payload.Data == nil {
		return b.WrapError(nil, "invalid job structure: payload.data is nil")
	}

	data := job.Payload.Data
	b.meta = &JobMeta{
		RequestID:  data.RequestID,
		ActionType: data.ActionType,
		OrgID:      data.OrgID,
		ID:         data.ID,
	}
	if b.meta.RequestID == "" {
		b.meta.RequestID = uuid.New().String()
	}

	b.bizPayload = data.Data
	return nil
}

// DecodePayload unmarshals the business data into v.
func (b *BaseHandler) DecodePayload(v interface{}) error {
	if len(b.bizPayload) == 0 || string(b.bizPayload) == "null" {
		return b.WrapError(nil, "job data is empty")
	}
	if err := json.Unmarshal(b.bizPayload, v); err != nil {
		return b.WrapError(err, "unmarshal job data failed")
	}
	return nil
}

func (b *BaseHandler) WrapResponse(ctx context.Context, output interface{}) ([]byte, error) {
	resp := &Response{
		Result:    output,
		Processed: true,
		Meta:      b.meta,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, b.WrapError(err, "marshal response failed")
	}
	return data, nil
}

// WrapErrorResponse still carries the output so partial results (the order key,
// the attempt count) reach the callback consumer.
func (b *BaseHandler) WrapErrorResponse(ctx context.Context, err error) ([]byte, error) {
	resp := &Response{
		Error:     errorutil.Wrap(err),
		Result:    b.output,
		Processed: false,
		Meta:      b.meta,
	}

	data, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return nil, b.WrapError(marshalErr, "marshal error response failed")
	}
	return data, nil
}

func (b *BaseHandler) WrapError(err error, msg string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

func (b *BaseHandler) GetMeta() *JobMeta {
	return b.meta
}

func (b *BaseHandler) GetRawData() []byte {
	return b.rawData
}

func (b *BaseHandler) SetOutput(output interface{}) {
	b.output = output
}

func (b *BaseHandler) GetOutput() interface{} {
	return b.output
}

func (b *BaseHandler) SetResulter(resulter Resulter) {
	b.resulter = resulter
}

func (b *BaseHandler) GetResulter() Resulter {
	return b.resulter
}
