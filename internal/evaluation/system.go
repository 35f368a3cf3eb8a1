package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/directive/internal/instructions"
)

// Loader supplies a user's enabled instructions.
type Loader interface {
	ListActive(ctx context.Context, user string) ([]instructions.Instruction, error)
}

// System defines the public contract for evaluating a conversation turn.
type System interface {
	Handler(maxBodySize int64) *Handler

	// Evaluate loads the user's instructions and evaluates them against
	// cctx. A load failure returns ErrLoadFailed and no partial result.
	Evaluate(ctx context.Context, user string, cctx Context) (*Result, error)
}

type system struct {
	loader   Loader
	engine   *Engine
	recorder *Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an evaluation System. A nil recorder disables usage tracking.
func New(loader Loader, engine *Engine, recorder *Recorder, logger *slog.Logger) System {
	return &system{
		loader:   loader,
		engine:   engine,
		recorder: recorder,
		logger:   logger.With("system", "evaluation"),
		now:      time.Now,
	}
}

func (s *system) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, maxBodySize)
}

func (s *system) Evaluate(ctx context.Context, user string, cctx Context) (*Result, error) {
	start := s.now()

	insts, err := s.loader.ListActive(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	active := s.engine.Rank(insts, cctx, start)

	// Usage is recorded in the background while conflicts are detected.
	if s.recorder != nil && len(active) > 0 {
		s.recorder.Record(user, idsOf(active))
	}

	result := newResult(len(insts), active, s.engine.DetectConflicts(instructionsOf(active)))
	result.EvaluationTimeMS = float64(s.now().Sub(start).Microseconds()) / 1000

	s.logger.Debug(
		"instructions evaluated",
		"user", user,
		"total", result.TotalEvaluated,
		"applied", result.AppliedCount,
		"conflicts", result.ConflictsDetected,
	)
	return &result, nil
}
