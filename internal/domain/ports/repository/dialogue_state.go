package repository

import (
	"context"
)

// DialogueStep is a state of the export dialogue. The zero value is idle.
type DialogueStep string

const (
	StepIdle          DialogueStep = ""
	StepAwaitingStart DialogueStep = "awaiting_start"
	StepAwaitingEnd   DialogueStep = "awaiting_end"
)

// DialogueState holds one user's progress through the export dialogue.
type DialogueState struct {
	Step      DialogueStep `json:"step"`
	StartDate string       `json:"start_date,omitempty"` // YYYY-MM-DD once captured
}

// DialogueStateRepository is the port for per-user dialogue sessions.
// GetState returns domain.ErrNotFound when the user has no session.
type DialogueStateRepository interface {
	SetState(ctx context.Context, tgID int64, state *DialogueState) error
	GetState(ctx context.Context, tgID int64) (*DialogueState, error)
	ClearState(ctx context.Context, tgID int64) error
}
