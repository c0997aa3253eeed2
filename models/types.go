package models

import (
	"time"
)

// Participant represents a connection seated in a session
type Participant struct {
	ID        string
	Name      string
	Budget    int
	Remaining int
	Vote      *int
	Disputes  int
	JoinedAt  time.Time
}

// Task is one backlog item to be estimated
type Task struct {
	ID     string
	Title  string
	Owner  string
	Points *int
	Status TaskStatus
}

// ReprBallot tallies a reprioritization vote. Voters maps a connection id to its choice.
type ReprBallot struct {
	Yes    int
	No     int
	Voters map[string]string
}

// Session represents one planning room
type Session struct {
	ID                   string
	Phase                Phase
	Scale                Scale
	Players              map[string]*Participant
	Tasks                []*Task
	CurrentTaskID        string
	ReprVote             *ReprBallot
	Timer                *time.Time
	TaskToReprioritizeID string
	CreatedAt            time.Time

	rules Rules
}

// Rules holds the tunables a session is created with.
type Rules struct {
	Scale           Scale
	InitialDisputes int
	ExplainTime     time.Duration
	DiscussTime     time.Duration
	ReprDiscussTime time.Duration
	MaxTitleLength  int
	MaxNameLength   int
	Now             func() time.Time
	NewTaskID       func() string
}

// Snapshot is the full session record sent to every room member
type Snapshot struct {
	ID                   string                    `json:"id"`
	Phase                Phase                     `json:"phase"`
	Scale                ScaleView                 `json:"scale"`
	Players              map[string]PlayerSnapshot `json:"players"`
	Tasks                []TaskSnapshot            `json:"tasks"`
	CurrentTask          *TaskSnapshot             `json:"currentTask"`
	ReprVote             *BallotSnapshot           `json:"reprVote"`
	Timer                *int64                    `json:"timer"`
	TaskToReprioritizeID *string                   `json:"taskToReprioritizeId"`
}

// PlayerSnapshot is the public view of a Participant
type PlayerSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Budget    int    `json:"budget"`
	Remaining int    `json:"remaining"`
	Vote      *int   `json:"vote"`
	Voted     bool   `json:"voted"`
	Disputes  int    `json:"disputes"`
}

// TaskSnapshot is the public view of a Task
type TaskSnapshot struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Owner  string     `json:"owner"`
	Points *int       `json:"points"`
	Status TaskStatus `json:"status"`
}

// BallotSnapshot is the public view of a ReprBallot
type BallotSnapshot struct {
	Yes    int               `json:"yes"`
	No     int               `json:"no"`
	Voters map[string]string `json:"voters"`
}

// ScaleView lists the estimates a session accepts
type ScaleView struct {
	Name   string `json:"name"`
	Values []int  `json:"values"`
}

// Event represents a frame exchanged with clients
type Event struct {
	Type    string      `json:"event"`
	Payload interface{} `json:"data"`
}
