package services

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownToken is returned when a token was never issued, was already
// used, or was superseded by a newer request.
var ErrUnknownToken = errors.New("unknown or expired confirmation token")

type ActionKind string

const (
	ActionDelete ActionKind = "delete"
	ActionReset  ActionKind = "reset"
)

// Action is a destructive command waiting for confirmation.
type Action struct {
	Kind ActionKind `json:"kind"`
	// TransactionID is set for deletes.
	TransactionID string `json:"transaction_id,omitempty"`
}

// Token identifies one pending Action.
type Token string

type pending struct {
	token  Token
	action Action
}

// ConfirmationGate holds at most one pending destructive action. Arming a
// new request discards the previous one.
type ConfirmationGate struct {
	mu      sync.Mutex
	current *pending
	newID   func() string
}

func NewConfirmationGate() *ConfirmationGate {
	return &ConfirmationGate{newID: uuid.NewString}
}

// Request arms a for confirmation and returns its token.
func (g *ConfirmationGate) Request(a Action) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	tok := Token(g.newID())
	g.current = &pending{token: tok, action: a}
	return tok
}

// Confirm consumes tok and returns the action it guarded.
func (g *ConfirmationGate) Confirm(tok Token) (Action, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil || g.current.token != tok {
		return Action{}, ErrUnknownToken
	}
	a := g.current.action
	g.current = nil
	return a, nil
}

// Cancel discards tok. It reports whether tok was pending.
func (g *ConfirmationGate) Cancel(tok Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil || g.current.token != tok {
		return false
	}
	g.current = nil
	return true
}

// armed returns the pending action, if any.
func (g *ConfirmationGate) armed() (Action, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return Action{}, false
	}
	return g.current.action, true
}
