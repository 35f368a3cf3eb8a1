package control

import "context"

// System defines the public contract for session control hand-off.
type System interface {
	Handler() *Handler

	// Get returns the session's control state, defaulting to the agent.
	Get(ctx context.Context, user, session string) (*State, error)
	// Set writes a new owner, as a compare-and-set when cmd.ExpectedOwner
	// is present.
	Set(ctx context.Context, user, session string, cmd SetCommand) (*State, error)
	// Reset removes the record, returning control to the agent.
	Reset(ctx context.Context, user, session string) (*State, error)
}
