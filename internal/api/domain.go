package api

import (
	"github.com/JaimeStill/directive/internal/control"
	"github.com/JaimeStill/directive/internal/evaluation"
	"github.com/JaimeStill/directive/internal/instructions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Instructions instructions.System
	Evaluation   evaluation.System
	Control      control.System
	Recorder     *evaluation.Recorder
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	instructionsSystem := instructions.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
		instructions.Limits{
			MaxTextLength: runtime.Instructions.MaxTextLength,
			MaxEnabled:    runtime.Instructions.MaxEnabled,
		},
	)

	recorder := evaluation.NewRecorder(
		instructionsSystem,
		runtime.Logger,
		runtime.Instructions.UsageTimeoutDuration(),
		runtime.Instructions.UsageConcurrency,
	)

	evaluationSystem := evaluation.New(
		instructionsSystem,
		evaluation.NewEngine(runtime.Lexicon, runtime.Logger),
		recorder,
		runtime.Logger,
	)

	return &Domain{
		Instructions: instructionsSystem,
		Evaluation:   evaluationSystem,
		Control:      control.New(runtime.Cache, runtime.Logger),
		Recorder:     recorder,
	}
}
