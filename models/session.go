package models

import (
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

func (r Rules) withDefaults() Rules {
	if r.Scale.Name == "" {
		r.Scale = BuiltinScales()[DefaultScaleName]
	}
	if r.InitialDisputes <= 0 {
		r.InitialDisputes = DefaultInitialDisputes
	}
	if r.ExplainTime <= 0 {
		r.ExplainTime = DefaultExplainTime
	}
	if r.DiscussTime <= 0 {
		r.DiscussTime = DefaultDiscussTime
	}
	if r.ReprDiscussTime <= 0 {
		r.ReprDiscussTime = DefaultReprDiscussTime
	}
	if r.MaxTitleLength <= 0 {
		r.MaxTitleLength = DefaultMaxTitleLength
	}
	if r.MaxNameLength <= 0 {
		r.MaxNameLength = DefaultMaxNameLength
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.NewTaskID == nil {
		r.NewTaskID = newTaskID
	}
	return r
}

// newTaskID returns a time-ordered id, so task ids sort by creation.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewSession creates an empty session in the lobby
func NewSession(id string, rules Rules) *Session {
	rules = rules.withDefaults()
	return &Session{
		ID:        id,
		Phase:     PhaseLobby,
		Scale:     rules.Scale,
		Players:   make(map[string]*Participant),
		Tasks:     make([]*Task, 0),
		CreatedAt: rules.Now(),
		rules:     rules,
	}
}

// IsEmpty reports whether nobody is left to keep the session alive.
func (s *Session) IsEmpty() bool {
	return len(s.Players) == 0
}

// Task returns the task with the given id, or nil.
func (s *Session) Task(id string) *Task {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// CurrentTask returns the task under discussion, or nil.
func (s *Session) CurrentTask() *Task {
	if s.CurrentTaskID == "" {
		return nil
	}
	return s.Task(s.CurrentTaskID)
}

// AddPlayer seats a connection in the session
func (s *Session) AddPlayer(connID, name string, budget int) error {
	if _, exists := s.Players[connID]; exists {
		return ErrAlreadyJoined
	}
	if name == "" || utf8.RuneCountInString(name) > s.rules.MaxNameLength {
		return ErrInvalidPlayerName
	}
	if budget < 0 {
		return ErrInvalidBudget
	}

	s.Players[connID] = &Participant{
		ID:        connID,
		Name:      name,
		Budget:    budget,
		Remaining: budget,
		Disputes:  s.rules.InitialDisputes,
		JoinedAt:  s.rules.Now(),
	}
	return nil
}

// RemovePlayer drops a connection from the session. Budgeted tasks it owned
// go back to pending, and the round is reset if it can no longer proceed.
func (s *Session) RemovePlayer(connID string) error {
	if _, exists := s.Players[connID]; !exists {
		return ErrPlayerNotFound
	}
	delete(s.Players, connID)

	for _, t := range s.Tasks {
		if t.Owner == connID && t.Status == StatusBudgeted {
			t.Points = nil
			t.Status = StatusPending
		}
	}

	current := s.CurrentTask()
	switch {
	case current != nil && (current.Owner == connID || s.Phase.Reprioritizing()):
		if current.Status != StatusBudgeted {
			current.Points = nil
		}
		s.backToLobby()
	case s.Phase.Reprioritizing():
		s.backToLobby()
	case s.Phase == PhaseVote:
		s.closeRoundIfComplete()
	}
	return nil
}

// AddTask appends a pending task owned by connID.
func (s *Session) AddTask(connID, title string) (*Task, error) {
	if _, err := s.player(connID); err != nil {
		return nil, err
	}
	if title == "" || utf8.RuneCountInString(title) > s.rules.MaxTitleLength {
		return nil, ErrInvalidTitle
	}

	t := &Task{
		ID:     s.rules.NewTaskID(),
		Title:  title,
		Owner:  connID,
		Status: StatusPending,
	}
	s.Tasks = append(s.Tasks, t)
	return t, nil
}

// SelectTask puts one of the sender's tasks up for explanation.
func (s *Session) SelectTask(connID, taskID string) error {
	if err := s.inPhase(PhaseLobby); err != nil {
		return err
	}
	t := s.Task(taskID)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if t.Owner != connID {
		return ErrNotOwner
	}
	if t.Status == StatusBudgeted {
		return ErrTaskSettled
	}

	s.resetVotes()
	t.Points = nil
	s.CurrentTaskID = t.ID
	s.ReprVote = nil
	s.TaskToReprioritizeID = ""
	s.Phase = PhaseExplain
	s.startTimer(s.rules.ExplainTime)
	return nil
}

// DoneExplain opens voting on the current task.
func (s *Session) DoneExplain(connID string) error {
	if _, err := s.ownerAction(connID, PhaseExplain); err != nil {
		return err
	}
	s.Phase = PhaseVote
	s.Timer = nil
	return nil
}

// SubmitVote records a hidden ballot. The last ballot reveals the estimate.
func (s *Session) SubmitVote(connID string, value int) error {
	if err := s.inPhase(PhaseVote); err != nil {
		return err
	}
	p, err := s.player(connID)
	if err != nil {
		return err
	}
	if p.Vote != nil {
		return ErrAlreadyVoted
	}
	if !s.Scale.Allows(value) {
		return fmt.Errorf("%w: %d", ErrInvalidVote, value)
	}
	current := s.CurrentTask()
	if current == nil {
		return ErrNoCurrentTask
	}
	owner, err := s.player(current.Owner)
	if err != nil {
		return err
	}
	if value > owner.Remaining {
		return fmt.Errorf("%w: %d > %d", ErrOverBudget, value, owner.Remaining)
	}

	v := value
	p.Vote = &v
	s.closeRoundIfComplete()
	return nil
}

// ProposeRepr opens a ballot on interrupting the round. Only players who
// have not voted yet may propose.
func (s *Session) ProposeRepr(connID string) error {
	if err := s.inPhase(PhaseVote); err != nil {
		return err
	}
	p, err := s.player(connID)
	if err != nil {
		return err
	}
	if p.Vote != nil {
		return ErrAlreadyVoted
	}

	s.ReprVote = &ReprBallot{Voters: make(map[string]string)}
	s.Phase = PhaseReprVote
	return nil
}

// CastReprBallot tallies one yes/no ballot and resolves once everyone voted.
func (s *Session) CastReprBallot(connID, choice string) error {
	if err := s.inPhase(PhaseReprVote); err != nil {
		return err
	}
	if _, err := s.player(connID); err != nil {
		return err
	}
	if s.ReprVote == nil {
		s.ReprVote = &ReprBallot{Voters: make(map[string]string)}
	}
	if _, voted := s.ReprVote.Voters[connID]; voted {
		return ErrAlreadyVoted
	}

	switch choice {
	case BallotYes:
		s.ReprVote.Yes++
	case BallotNo:
		s.ReprVote.No++
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}
	s.ReprVote.Voters[connID] = choice

	if len(s.ReprVote.Voters) < len(s.Players) {
		return nil
	}
	if s.ReprVote.Yes > s.ReprVote.No {
		s.Phase = PhaseRepr
	} else {
		s.Phase = PhaseVote
	}
	s.ReprVote = nil
	return nil
}

// ProposeTaskRemoval nominates one of the owner's budgeted tasks for removal.
func (s *Session) ProposeTaskRemoval(connID, taskID string) error {
	if _, err := s.ownerAction(connID, PhaseRepr); err != nil {
		return err
	}
	t := s.Task(taskID)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if t.Owner != connID {
		return ErrNotOwner
	}
	if t.Points == nil {
		return ErrTaskNotBudgeted
	}

	s.TaskToReprioritizeID = t.ID
	s.Phase = PhaseReprDiscuss
	s.startTimer(s.rules.ReprDiscussTime)
	return nil
}

// DoneRepr ends reprioritization without removing anything.
func (s *Session) DoneRepr(connID string) error {
	if _, err := s.ownerAction(connID, PhaseRepr); err != nil {
		return err
	}
	s.resetVotes()
	s.Phase = PhaseVote
	s.Timer = nil
	return nil
}

// ConfirmTaskRemoval refunds the nominated task and resumes voting.
func (s *Session) ConfirmTaskRemoval(connID string) error {
	if _, err := s.ownerAction(connID, PhaseReprDiscuss); err != nil {
		return err
	}

	if t := s.Task(s.TaskToReprioritizeID); t != nil && t.Points != nil {
		if owner, ok := s.Players[t.Owner]; ok && t.Status == StatusBudgeted {
			owner.Remaining += *t.Points
		}
		t.Points = nil
		t.Status = StatusPending
	}

	s.TaskToReprioritizeID = ""
	s.resetVotes()
	s.Phase = PhaseVote
	s.Timer = nil
	return nil
}

// CancelReprioritization abandons the current task and returns to the lobby.
func (s *Session) CancelReprioritization(connID string) error {
	current, err := s.ownerAction(connID, PhaseReprDiscuss)
	if err != nil {
		return err
	}
	current.Status = StatusAbandoned
	current.Points = nil
	s.backToLobby()
	return nil
}

// Accept commits the revealed estimate against the owner's budget. When the
// owner cannot afford it the task is kept as remaining work instead.
func (s *Session) Accept(connID string) error {
	current, err := s.ownerAction(connID, PhaseReveal)
	if err != nil {
		return err
	}
	owner, err := s.player(connID)
	if err != nil {
		return err
	}

	points := 0
	if current.Points != nil {
		points = *current.Points
	}
	if owner.Remaining < points {
		current.Status = StatusRemainingWork
		current.Points = nil
	} else {
		owner.Remaining -= points
		current.Status = StatusBudgeted
	}

	s.backToLobby()
	return nil
}

// Dispute reopens discussion instead of accepting the estimate.
func (s *Session) Dispute(connID string) error {
	if _, err := s.ownerAction(connID, PhaseReveal); err != nil {
		return err
	}
	owner, err := s.player(connID)
	if err != nil {
		return err
	}
	if owner.Disputes <= 0 {
		return ErrNoDisputes
	}

	owner.Disputes--
	s.Phase = PhaseDiscuss
	s.startTimer(s.rules.DiscussTime)
	return nil
}

// Revote clears the ballots after a dispute and votes again.
func (s *Session) Revote(connID string) error {
	current, err := s.ownerAction(connID, PhaseDiscuss)
	if err != nil {
		return err
	}
	current.Points = nil
	s.resetVotes()
	s.Phase = PhaseVote
	s.Timer = nil
	return nil
}

// Apply routes an in-session request to its transition. Joins are handled by
// the registry and are rejected here.
func (s *Session) Apply(connID string, req Request) error {
	switch r := req.(type) {
	case AddTaskRequest:
		_, err := s.AddTask(connID, r.Title)
		return err
	case SelectTaskRequest:
		return s.SelectTask(connID, r.TaskID)
	case DoneExplainRequest:
		return s.DoneExplain(connID)
	case VoteRequest:
		return s.SubmitVote(connID, r.Value)
	case ProposeReprRequest:
		return s.ProposeRepr(connID)
	case ReprBallotRequest:
		return s.CastReprBallot(connID, r.Choice)
	case ProposeTaskRemovalRequest:
		return s.ProposeTaskRemoval(connID, r.TaskID)
	case DoneReprRequest:
		return s.DoneRepr(connID)
	case ConfirmTaskRemovalRequest:
		return s.ConfirmTaskRemoval(connID)
	case CancelReprioritizationRequest:
		return s.CancelReprioritization(connID)
	case AcceptRequest:
		return s.Accept(connID)
	case DisputeRequest:
		return s.Dispute(connID)
	case RevoteRequest:
		return s.Revote(connID)
	case JoinRequest:
		return ErrAlreadyJoined
	}
	return fmt.Errorf("%w: %T", ErrUnknownEvent, req)
}

func (s *Session) player(connID string) (*Participant, error) {
	p, ok := s.Players[connID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func (s *Session) inPhase(allowed ...Phase) error {
	if slices.Contains(allowed, s.Phase) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, s.Phase)
}

// ownerAction checks the phase and that connID owns the current task.
func (s *Session) ownerAction(connID string, allowed ...Phase) (*Task, error) {
	if err := s.inPhase(allowed...); err != nil {
		return nil, err
	}
	current := s.CurrentTask()
	if current == nil {
		return nil, ErrNoCurrentTask
	}
	if current.Owner != connID {
		return nil, ErrNotOwner
	}
	return current, nil
}

// closeRoundIfComplete reveals the estimate once every player has voted.
func (s *Session) closeRoundIfComplete() {
	if s.Phase != PhaseVote || len(s.Players) == 0 {
		return
	}
	votes := make([]int, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Vote == nil {
			return
		}
		votes = append(votes, *p.Vote)
	}

	estimate, _ := Estimate(votes)
	if current := s.CurrentTask(); current != nil {
		current.Points = &estimate
	}
	s.Phase = PhaseReveal
	s.Timer = nil
}

func (s *Session) resetVotes() {
	for _, p := range s.Players {
		p.Vote = nil
	}
}

func (s *Session) startTimer(d time.Duration) {
	deadline := s.rules.Now().Add(d)
	s.Timer = &deadline
}

func (s *Session) backToLobby() {
	s.Phase = PhaseLobby
	s.CurrentTaskID = ""
	s.Timer = nil
	s.ReprVote = nil
	s.TaskToReprioritizeID = ""
	s.resetVotes()
}
