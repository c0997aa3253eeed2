package models

import "errors"

// Malformed input, rejected before reaching a session.
var (
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrInvalidPlayerName = errors.New("invalid player name")
	ErrInvalidBudget     = errors.New("invalid budget")
	ErrInvalidSessionID  = errors.New("invalid session id")
	ErrInvalidTitle      = errors.New("invalid task title")
	ErrInvalidChoice     = errors.New("invalid ballot choice")
)

// Valid input that the session refuses.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotJoined       = errors.New("connection has not joined a session")
	ErrAlreadyJoined   = errors.New("connection already joined this session")
	ErrPlayerNotFound  = errors.New("player not found in session")
	ErrTaskNotFound    = errors.New("task not found")
	ErrNoCurrentTask   = errors.New("no task selected")
	ErrNotOwner        = errors.New("only the task owner can perform this action")
	ErrWrongPhase      = errors.New("event not allowed in current phase")
	ErrTaskSettled     = errors.New("task already budgeted")
	ErrTaskNotBudgeted = errors.New("task has no committed points")
	ErrInvalidVote     = errors.New("vote not in estimate scale")
	ErrOverBudget      = errors.New("vote exceeds owner's remaining budget")
	ErrAlreadyVoted    = errors.New("player already voted")
	ErrNoDisputes      = errors.New("no disputes left")
)
