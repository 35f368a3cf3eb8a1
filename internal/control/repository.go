package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/JaimeStill/directive/pkg/cache"
)

const casAttempts = 3

type repo struct {
	cache  cache.System
	logger *slog.Logger
	now    func() time.Time
}

// New creates the control system backed by the shared cache.
func New(c cache.System, logger *slog.Logger) System {
	return &repo{
		cache:  c,
		logger: logger.With("system", "control"),
		now:    time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) key(user, session string) string {
	return stateKey(r.cache, user, session)
}

func stateKey(c cache.System, user, session string) string {
	return c.Key("control", user, session)
}

func (r *repo) Get(ctx context.Context, user, session string) (*State, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}

	state, err := read(ctx, r.cache.Client(), r.key(user, session), session)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repo) Set(ctx context.Context, user, session string, cmd SetCommand) (*State, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	key := r.key(user, session)
	state := State{
		SessionID: session,
		Owner:     cmd.Owner,
		UpdatedBy: user,
		UpdatedAt: r.now().UTC(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode control state: %w", err)
	}

	client := r.cache.Client()

	if cmd.ExpectedOwner == nil {
		if err := client.Set(ctx, key, data, 0).Err(); err != nil {
			return nil, fmt.Errorf("write control state: %w", err)
		}
		r.logger.Info("control handed off", "user", user, "session", session, "owner", state.Owner)
		return &state, nil
	}

	txf := func(tx *redis.Tx) error {
		current, err := read(ctx, tx, key, session)
		if err != nil {
			return err
		}
		if current.Owner != *cmd.ExpectedOwner {
			return fmt.Errorf("%w: owner is %s", ErrOwnerMismatch, current.Owner)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for range casAttempts {
		err := client.Watch(ctx, txf, key)
		if err == nil {
			r.logger.Info(
				"control handed off",
				"user", user,
				"session", session,
				"owner", state.Owner,
				"expected", *cmd.ExpectedOwner,
			)
			return &state, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrOwnerMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("write control state: %w", err)
	}
	return nil, ErrContended
}

func (r *repo) Reset(ctx context.Context, user, session string) (*State, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}

	if err := r.cache.Client().Del(ctx, r.key(user, session)).Err(); err != nil {
		return nil, fmt.Errorf("reset control state: %w", err)
	}

	r.logger.Info("control reset", "user", user, "session", session)
	state := defaultState(session)
	return &state, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func read(ctx context.Context, c getter, key, session string) (State, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return defaultState(session), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read control state: %w", err)
	}
	return decodeState(session, data)
}
