package instructions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/directive/pkg/pagination"
	"github.com/JaimeStill/directive/pkg/query"
	"github.com/JaimeStill/directive/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	limits     Limits
}

// New creates an instruction repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	limits Limits,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "instructions"),
		pagination: pagination,
		limits:     limits,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	user string,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Instruction], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("UserID", user).
		WhereSearch(page.Search, "Text")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count instructions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanInstruction)
	if err != nil {
		return nil, fmt.Errorf("query instructions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, user string, id uuid.UUID) (*Instruction, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("UserID", user).
		BuildSingleOrNull()

	inst, err := repository.QueryOne(ctx, r.db, q, args, scanInstruction)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &inst, nil
}

func (r *repo) Create(ctx context.Context, user string, cmd CreateCommand) (*Instruction, error) {
	cmd.normalize()
	if err := validate(cmd.Text, cmd.Priority, cmd.Category, cmd.ContextHints, r.limits); err != nil {
		return nil, err
	}

	hints, err := encodeHints(cmd.ContextHints)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO standing_instructions(user_id, text, priority, category, enabled, context_hints)
		VALUES ($1, $2, $3, $4, $5, $6)
		` + returning

	args := []any{user, cmd.Text, cmd.Priority, cmd.Category, *cmd.Enabled, hints}

	inst, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Instruction, error) {
		if err := lockUser(ctx, tx, user); err != nil {
			return Instruction{}, err
		}
		inst, err := repository.QueryOne(ctx, tx, q, args, scanInstruction)
		if err != nil {
			return Instruction{}, err
		}
		if inst.Enabled {
			return inst, r.checkCapacity(ctx, tx, user)
		}
		return inst, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("instruction created", "id", inst.ID, "user", user, "category", inst.Category)
	return &inst, nil
}

func (r *repo) Update(ctx context.Context, user string, id uuid.UUID, cmd UpdateCommand) (*Instruction, error) {
	cmd.normalize()
	if err := validate(cmd.Text, cmd.Priority, cmd.Category, cmd.ContextHints, r.limits); err != nil {
		return nil, err
	}

	hints, err := encodeHints(cmd.ContextHints)
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE standing_instructions
		SET text = $1, priority = $2, category = $3, enabled = $4,
			context_hints = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
		` + returning

	args := []any{cmd.Text, cmd.Priority, cmd.Category, cmd.Enabled, hints, id, user}

	inst, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Instruction, error) {
		if err := lockUser(ctx, tx, user); err != nil {
			return Instruction{}, err
		}
		inst, err := repository.QueryOne(ctx, tx, q, args, scanInstruction)
		if err != nil {
			return Instruction{}, err
		}
		if inst.Enabled {
			return inst, r.checkCapacity(ctx, tx, user)
		}
		return inst, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("instruction updated", "id", inst.ID, "user", user)
	return &inst, nil
}

func (r *repo) Delete(ctx context.Context, user string, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM standing_instructions WHERE id = $1 AND user_id = $2",
			id, user,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("instruction deleted", "id", id, "user", user)
	return nil
}

func (r *repo) SetEnabled(ctx context.Context, user string, cmd BulkCommand) (*BulkResult, error) {
	if len(cmd.IDs) == 0 {
		return nil, ErrEmptyBulk
	}

	q := `
		UPDATE standing_instructions
		SET enabled = $1, updated_at = now()
		WHERE user_id = $2 AND id = ANY($3::text[]::uuid[]) AND enabled <> $1`

	args := []any{cmd.Enabled, user, idStrings(cmd.IDs)}

	updated, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		if err := lockUser(ctx, tx, user); err != nil {
			return 0, err
		}
		n, err := repository.ExecCount(ctx, tx, q, args...)
		if err != nil {
			return 0, err
		}
		if cmd.Enabled {
			return n, r.checkCapacity(ctx, tx, user)
		}
		return n, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("instructions bulk updated", "user", user, "enabled", cmd.Enabled, "updated", updated)
	return &BulkResult{Updated: int(updated)}, nil
}

func (r *repo) ListActive(ctx context.Context, user string) ([]Instruction, error) {
	enabled := true
	q, args := query.
		NewBuilder(projection, activeSort...).
		WhereEquals("UserID", user).
		WhereEquals("Enabled", enabled).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanInstruction)
	if err != nil {
		return nil, fmt.Errorf("query active instructions: %w", err)
	}
	return items, nil
}

func (r *repo) IncrementUsage(ctx context.Context, user string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	q := `
		UPDATE standing_instructions
		SET usage_count = usage_count + 1, last_used_at = now()
		WHERE user_id = $1 AND id = ANY($2::text[]::uuid[])`

	n, err := repository.ExecCount(ctx, r.db, q, user, idStrings(ids))
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}

	r.logger.Debug("instruction usage recorded", "user", user, "requested", len(ids), "updated", n)
	return nil
}

// lockUser serializes writes that can change a user's enabled count.
func lockUser(ctx context.Context, tx *sql.Tx, user string) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", user); err != nil {
		return fmt.Errorf("lock user instructions: %w", err)
	}
	return nil
}

// checkCapacity runs after a write inside the same transaction so the
// returned error rolls the write back.
func (r *repo) checkCapacity(ctx context.Context, tx *sql.Tx, user string) error {
	var count int
	err := tx.QueryRowContext(
		ctx,
		"SELECT count(*) FROM standing_instructions WHERE user_id = $1 AND enabled",
		user,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count enabled instructions: %w", err)
	}
	if count > r.limits.MaxEnabled {
		return ErrLimitReached
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
