// Package control tracks who drives a remote session: the agent or a human
// who has taken over. State lives in Redis, one key per user and session,
// so every replica sees the same owner.
package control

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const maxSessionLength = 128

// Owner identifies who currently controls a session.
type Owner string

const (
	OwnerAgent Owner = "agent"
	OwnerHuman Owner = "human"
)

// Valid reports whether o is a known owner.
func (o Owner) Valid() bool {
	return o == OwnerAgent || o == OwnerHuman
}

// UnmarshalJSON rejects owners other than agent and human.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Owner(s).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOwner, s)
	}
	*o = Owner(s)
	return nil
}

// State is the control record for one session. A session that was never
// written reports the agent as owner with no UpdatedBy.
type State struct {
	SessionID string    `json:"session_id"`
	Owner     Owner     `json:"owner"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// SetCommand hands control of a session to Owner. When ExpectedOwner is
// set the write only succeeds if the current owner matches it.
type SetCommand struct {
	Owner         Owner  `json:"owner"`
	ExpectedOwner *Owner `json:"expected_owner,omitempty"`
}

func (c SetCommand) validate() error {
	if !c.Owner.Valid() {
		return ErrInvalidOwner
	}
	if c.ExpectedOwner != nil && !c.ExpectedOwner.Valid() {
		return ErrInvalidOwner
	}
	return nil
}

func defaultState(session string) State {
	return State{SessionID: session, Owner: OwnerAgent}
}

func validateSession(session string) error {
	if session == "" || len(session) > maxSessionLength {
		return ErrInvalidSession
	}
	if strings.ContainsFunc(session, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r) || unicode.IsControl(r)
	}) {
		return ErrInvalidSession
	}
	return nil
}

// decodeState reads a stored record. Missing data yields the default state.
func decodeState(session string, data []byte) (State, error) {
	if len(data) == 0 {
		return defaultState(session), nil
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode control state: %w", err)
	}
	s.SessionID = session
	return s, nil
}
