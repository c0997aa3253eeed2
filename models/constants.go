package models

import (
	"fmt"
	"time"
)

// Inbound event names
const (
	EventJoin                   = "join"
	EventAddTask                = "addTask"
	EventSelectTask             = "selectTask"
	EventDoneExplain            = "doneExplain"
	EventVote                   = "vote"
	EventProposeRepr            = "proposeRepr"
	EventReprBallot             = "reprBallot"
	EventProposeTaskRemoval     = "proposeTaskRemoval"
	EventDoneRepr               = "doneRepr"
	EventConfirmTaskRemoval     = "confirmTaskRemoval"
	EventCancelReprioritization = "cancelReprioritization"
	EventAccept                 = "accept"
	EventDispute                = "dispute"
	EventRevote                 = "revote"
)

// Outbound event names
const (
	EventConnected = "connected"
	EventState     = "state"
)

// Phase is the state of a session's turn machine.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseExplain
	PhaseVote
	PhaseReveal
	PhaseDiscuss
	PhaseReprVote
	PhaseRepr
	PhaseReprDiscuss
)

var phaseNames = [...]string{
	PhaseLobby:       "lobby",
	PhaseExplain:     "explain",
	PhaseVote:        "vote",
	PhaseReveal:      "reveal",
	PhaseDiscuss:     "discuss",
	PhaseReprVote:    "reprVote",
	PhaseRepr:        "repr",
	PhaseReprDiscuss: "reprDiscuss",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name for JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(phaseNames) {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Reprioritizing reports whether the phase belongs to the interrupt branch.
func (p Phase) Reprioritizing() bool {
	switch p {
	case PhaseReprVote, PhaseRepr, PhaseReprDiscuss:
		return true
	case PhaseLobby, PhaseExplain, PhaseVote, PhaseReveal, PhaseDiscuss:
		return false
	}
	return false
}

// BallotHidden reports whether vote values must stay hidden from other players.
func (p Phase) BallotHidden() bool {
	switch p {
	case PhaseVote, PhaseReprVote, PhaseRepr, PhaseReprDiscuss:
		return true
	case PhaseLobby, PhaseExplain, PhaseReveal, PhaseDiscuss:
		return false
	}
	return true
}

// TaskStatus tracks where a backlog item stands.
type TaskStatus string

const (
	StatusPending       TaskStatus = "pending"
	StatusBudgeted      TaskStatus = "budgeted"
	StatusRemainingWork TaskStatus = "remaining_work"
	StatusAbandoned     TaskStatus = "abandoned"
)

// Ballot choices for the reprioritization vote
const (
	BallotYes = "yes"
	BallotNo  = "no"
)

// Defaults used when rules are not configured.
const (
	DefaultInitialDisputes = 2
	DefaultExplainTime     = 2 * time.Minute
	DefaultDiscussTime     = time.Minute
	DefaultReprDiscussTime = time.Minute
	DefaultMaxTitleLength  = 200
	DefaultMaxNameLength   = 40
)
