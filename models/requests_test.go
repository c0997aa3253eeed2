package models

import (
	"errors"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		frame string
		want  Request
	}{
		{`{"event":"join","data":{"sessionId":" X ","name":" Ann ","budget":10}}`,
			JoinRequest{SessionID: "X", Name: "Ann", Budget: 10}},
		{`{"event":"join","data":{"sessionId":"X","name":"Ann","budget":0,"scale":"fibonacci-zero"}}`,
			JoinRequest{SessionID: "X", Name: "Ann", Budget: 0, Scale: "fibonacci-zero"}},
		{`{"event":"addTask","data":"  Login page "}`, AddTaskRequest{Title: "Login page"}},
		{`{"event":"selectTask","data":"t1"}`, SelectTaskRequest{TaskID: "t1"}},
		{`{"event":"vote","data":8}`, VoteRequest{Value: 8}},
		{`{"event":"vote","data":13.0}`, VoteRequest{Value: 13}},
		{`{"event":"reprBallot","data":"yes"}`, ReprBallotRequest{Choice: BallotYes}},
		{`{"event":"proposeTaskRemoval","data":"t2"}`, ProposeTaskRemovalRequest{TaskID: "t2"}},
		{`{"event":"doneExplain"}`, DoneExplainRequest{}},
		{`{"event":"proposeRepr","data":null}`, ProposeReprRequest{}},
		{`{"event":"doneRepr"}`, DoneReprRequest{}},
		{`{"event":"confirmTaskRemoval"}`, ConfirmTaskRemovalRequest{}},
		{`{"event":"cancelReprioritization"}`, CancelReprioritizationRequest{}},
		{`{"event":"accept"}`, AcceptRequest{}},
		{`{"event":"dispute"}`, DisputeRequest{}},
		{`{"event":"revote"}`, RevoteRequest{}},
	}
	for _, tt := range tests {
		got, err := DecodeFrame([]byte(tt.frame))
		if err != nil {
			t.Fatalf("DecodeFrame(%s): %v", tt.frame, err)
		}
		if got != tt.want {
			t.Fatalf("DecodeFrame(%s) = %#v, want %#v", tt.frame, got, tt.want)
		}
		if got.EventName() != tt.want.EventName() {
			t.Fatalf("event name mismatch for %s", tt.frame)
		}
	}
}

func TestDecodeFrameRejectsMalformed(t *testing.T) {
	tests := []struct {
		frame string
		want  error
	}{
		{`not json`, ErrInvalidPayload},
		{`{"event":"fly"}`, ErrUnknownEvent},
		{`{"event":"join","data":{"name":"Ann","budget":10}}`, ErrInvalidSessionID},
		{`{"event":"join","data":{"sessionId":"X","name":"  ","budget":10}}`, ErrInvalidPlayerName},
		{`{"event":"join","data":{"sessionId":"X","name":"Ann"}}`, ErrInvalidBudget},
		{`{"event":"join","data":{"sessionId":"X","name":"Ann","budget":"ten"}}`, ErrInvalidBudget},
		{`{"event":"join","data":{"sessionId":"X","name":"Ann","budget":"10"}}`, ErrInvalidBudget},
		{`{"event":"join","data":{"sessionId":"X","name":"Ann","budget":-3}}`, ErrInvalidBudget},
		{`{"event":"join","data":{"sessionId":"X","name":"Ann","budget":2.5}}`, ErrInvalidBudget},
		{`{"event":"join","data":"X"}`, ErrInvalidPayload},
		{`{"event":"addTask","data":"   "}`, ErrInvalidTitle},
		{`{"event":"addTask","data":42}`, ErrInvalidTitle},
		{`{"event":"selectTask"}`, ErrInvalidPayload},
		{`{"event":"vote","data":"5"}`, ErrInvalidPayload},
		{`{"event":"vote","data":2.5}`, ErrInvalidPayload},
		{`{"event":"vote"}`, ErrInvalidPayload},
		{`{"event":"reprBallot","data":"maybe"}`, ErrInvalidChoice},
		{`{"event":"reprBallot","data":true}`, ErrInvalidChoice},
	}
	for _, tt := range tests {
		_, err := DecodeFrame([]byte(tt.frame))
		if !errors.Is(err, tt.want) {
			t.Errorf("DecodeFrame(%s): expected %v, got %v", tt.frame, tt.want, err)
		}
	}
}
