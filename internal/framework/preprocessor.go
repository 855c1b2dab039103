package framework

import (
	"context"
	"fmt"
)

// PreProcessor runs a fixed chain of stages in order and stops at the first
// failing one. Stages share state through their closures.
type PreProcessor struct {
	processFuncs []ProcessorFunc
}

func NewPreProcessor(processFuncs []ProcessorFunc) *PreProcessor {
	return &PreProcessor{
		processFuncs: processFuncs,
	}
}

// Run executes the chain. A cancelled ctx stops it before the next stage starts.
func (p *PreProcessor) Run(ctx context.Context) error {
	for i, processFunc := range p.processFuncs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stage[%d] not started: %w", i, err)
		}
		if err := processFunc(ctx); err != nil {
			return fmt.Errorf("stage[%d] failed: %w", i, err)
		}
	}
	return nil
}
