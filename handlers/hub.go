package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/Arvi89/planning-taki/models"
	"go.uber.org/zap"
)

// ErrHubStopped is returned when the hub loop is no longer running.
var ErrHubStopped = errors.New("hub stopped")

type hubEventKind int

const (
	hubConnect hubEventKind = iota
	hubMessage
	hubDisconnect
	hubCall
)

type hubEvent struct {
	kind   hubEventKind
	connID string
	out    Outbox
	req    models.Request
	call   func(*Dispatcher)
	done   chan struct{}
}

// Hub runs the dispatcher on a single goroutine. Every session mutation goes
// through its inbox, so events are applied one at a time in arrival order.
type Hub struct {
	dispatcher *Dispatcher
	inbox      chan hubEvent
	stopped    chan struct{}
	sweepEvery time.Duration
	log        *zap.Logger
}

// NewHub wraps dispatcher. inboxSize bounds queued events; sweepEvery of zero
// disables the periodic empty-session sweep.
func NewHub(dispatcher *Dispatcher, inboxSize int, sweepEvery time.Duration, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		dispatcher: dispatcher,
		inbox:      make(chan hubEvent, inboxSize),
		stopped:    make(chan struct{}),
		sweepEvery: sweepEvery,
		log:        log,
	}
}

// Run processes events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	var sweep <-chan time.Time
	if h.sweepEvery > 0 {
		ticker := time.NewTicker(h.sweepEvery)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			h.log.Info("hub stopped")
			return
		case ev := <-h.inbox:
			h.process(ev)
		case <-sweep:
			h.dispatcher.Sweep()
		}
	}
}

func (h *Hub) process(ev hubEvent) {
	switch ev.kind {
	case hubConnect:
		h.dispatcher.Connect(ev.connID, ev.out)
	case hubMessage:
		_ = h.dispatcher.Handle(ev.connID, ev.req)
	case hubDisconnect:
		h.dispatcher.Disconnect(ev.connID)
	case hubCall:
		ev.call(h.dispatcher)
	}
	if ev.done != nil {
		close(ev.done)
	}
}

// Register announces a new connection.
func (h *Hub) Register(connID string, out Outbox) error {
	return h.enqueue(hubEvent{kind: hubConnect, connID: connID, out: out})
}

// Submit queues a validated request from connID.
func (h *Hub) Submit(connID string, req models.Request) error {
	return h.enqueue(hubEvent{kind: hubMessage, connID: connID, req: req})
}

// Unregister runs the disconnect transition for connID.
func (h *Hub) Unregister(connID string) error {
	return h.enqueue(hubEvent{kind: hubDisconnect, connID: connID})
}

// Call runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) Call(ctx context.Context, fn func(*Dispatcher)) error {
	done := make(chan struct{})
	ev := hubEvent{kind: hubCall, call: fn, done: done}
	select {
	case h.inbox <- ev:
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) enqueue(ev hubEvent) error {
	select {
	case h.inbox <- ev:
		return nil
	case <-h.stopped:
		return ErrHubStopped
	}
}
