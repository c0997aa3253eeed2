package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Envelope is the wire frame: {"event": "...", "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Request is one validated inbound event.
type Request interface {
	EventName() string
}

type JoinRequest struct {
	SessionID string
	Name      string
	Budget    int
	Scale     string
}

type AddTaskRequest struct{ Title string }
type SelectTaskRequest struct{ TaskID string }
type DoneExplainRequest struct{}
type VoteRequest struct{ Value int }
type ProposeReprRequest struct{}
type ReprBallotRequest struct{ Choice string }
type ProposeTaskRemovalRequest struct{ TaskID string }
type DoneReprRequest struct{}
type ConfirmTaskRemovalRequest struct{}
type CancelReprioritizationRequest struct{}
type AcceptRequest struct{}
type DisputeRequest struct{}
type RevoteRequest struct{}

func (JoinRequest) EventName() string                   { return EventJoin }
func (AddTaskRequest) EventName() string                { return EventAddTask }
func (SelectTaskRequest) EventName() string             { return EventSelectTask }
func (DoneExplainRequest) EventName() string            { return EventDoneExplain }
func (VoteRequest) EventName() string                   { return EventVote }
func (ProposeReprRequest) EventName() string            { return EventProposeRepr }
func (ReprBallotRequest) EventName() string             { return EventReprBallot }
func (ProposeTaskRemovalRequest) EventName() string     { return EventProposeTaskRemoval }
func (DoneReprRequest) EventName() string               { return EventDoneRepr }
func (ConfirmTaskRemovalRequest) EventName() string     { return EventConfirmTaskRemoval }
func (CancelReprioritizationRequest) EventName() string { return EventCancelReprioritization }
func (AcceptRequest) EventName() string                 { return EventAccept }
func (DisputeRequest) EventName() string                { return EventDispute }
func (RevoteRequest) EventName() string                 { return EventRevote }

// DecodeFrame parses a raw text frame into a validated Request.
func DecodeFrame(frame []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return ParseRequest(env.Event, env.Data)
}

// ParseRequest validates the payload shape of a named event. It does not
// look at any session: a request that parses may still be refused later.
func ParseRequest(event string, data json.RawMessage) (Request, error) {
	switch event {
	case EventJoin:
		return parseJoin(data)
	case EventAddTask:
		title, err := parseText(data, ErrInvalidTitle)
		if err != nil {
			return nil, err
		}
		return AddTaskRequest{Title: title}, nil
	case EventSelectTask:
		id, err := parseText(data, ErrInvalidPayload)
		if err != nil {
			return nil, err
		}
		return SelectTaskRequest{TaskID: id}, nil
	case EventProposeTaskRemoval:
		id, err := parseText(data, ErrInvalidPayload)
		if err != nil {
			return nil, err
		}
		return ProposeTaskRemovalRequest{TaskID: id}, nil
	case EventVote:
		v, err := parseInt(data)
		if err != nil {
			return nil, err
		}
		return VoteRequest{Value: v}, nil
	case EventReprBallot:
		var choice string
		if err := json.Unmarshal(data, &choice); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidChoice, err)
		}
		if choice != BallotYes && choice != BallotNo {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
		}
		return ReprBallotRequest{Choice: choice}, nil
	case EventDoneExplain:
		return DoneExplainRequest{}, nil
	case EventProposeRepr:
		return ProposeReprRequest{}, nil
	case EventDoneRepr:
		return DoneReprRequest{}, nil
	case EventConfirmTaskRemoval:
		return ConfirmTaskRemovalRequest{}, nil
	case EventCancelReprioritization:
		return CancelReprioritizationRequest{}, nil
	case EventAccept:
		return AcceptRequest{}, nil
	case EventDispute:
		return DisputeRequest{}, nil
	case EventRevote:
		return RevoteRequest{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

func parseJoin(data json.RawMessage) (Request, error) {
	var raw struct {
		SessionID *string          `json:"sessionId"`
		Name      *string          `json:"name"`
		Budget    *json.RawMessage `json:"budget"`
		Scale     string           `json:"scale"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if raw.SessionID == nil || strings.TrimSpace(*raw.SessionID) == "" {
		return nil, ErrInvalidSessionID
	}
	if raw.Name == nil || strings.TrimSpace(*raw.Name) == "" {
		return nil, ErrInvalidPlayerName
	}
	if raw.Budget == nil {
		return nil, ErrInvalidBudget
	}
	budget, err := parseInt(*raw.Budget)
	if err != nil || budget < 0 {
		return nil, ErrInvalidBudget
	}

	return JoinRequest{
		SessionID: strings.TrimSpace(*raw.SessionID),
		Name:      strings.TrimSpace(*raw.Name),
		Budget:    budget,
		Scale:     strings.TrimSpace(raw.Scale),
	}, nil
}

func parseText(data json.RawMessage, kind error) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("%w: %v", kind, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", kind)
	}
	return s, nil
}

// parseInt accepts JSON numbers with no fractional part.
func parseInt(data json.RawMessage) (int, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return 0, fmt.Errorf("%w: quoted number", ErrInvalidPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidPayload, n)
	}
	return int(f), nil
}
