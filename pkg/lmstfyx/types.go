package lmstfyx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc handles one raw lmstfy job and decides its fate.
type Proc func(ctx context.Context, job *client.Job) *JobResp

type JobRespStatus int

const (
	// JobRespStatusSuccess acks the job.
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRelease leaves the job unacked so lmstfy redelivers it.
	JobRespStatusRelease
	// JobRespStatusBury acks a job that can never succeed.
	JobRespStatusBury
)

func (s JobRespStatus) String() string {
	switch s {
	case JobRespStatusSuccess:
		return "success"
	case JobRespStatusRelease:
		return "release"
	case JobRespStatusBury:
		return "bury"
	default:
		return "unknown"
	}
}

// JobResp is the outcome of a Proc.
type JobResp struct {
	Action JobRespStatus
	Data   []byte
}
