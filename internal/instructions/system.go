package instructions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/directive/pkg/pagination"
)

// System defines the public contract for standing instruction operations.
// Every operation is scoped to the owning user.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		user string,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Instruction], error)

	Find(ctx context.Context, user string, id uuid.UUID) (*Instruction, error)
	Create(ctx context.Context, user string, cmd CreateCommand) (*Instruction, error)
	Update(ctx context.Context, user string, id uuid.UUID, cmd UpdateCommand) (*Instruction, error)
	Delete(ctx context.Context, user string, id uuid.UUID) error
	SetEnabled(ctx context.Context, user string, cmd BulkCommand) (*BulkResult, error)

	// ListActive returns the user's enabled instructions ordered by
	// priority desc, usage desc, then creation time.
	ListActive(ctx context.Context, user string) ([]Instruction, error)

	// IncrementUsage atomically bumps usage_count and last_used_at for the
	// given instructions owned by user.
	IncrementUsage(ctx context.Context, user string, ids []uuid.UUID) error
}
