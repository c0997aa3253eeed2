package handlers

import (
	"encoding/json"
	"errors"

	"github.com/Arvi89/planning-taki/db"
	"github.com/Arvi89/planning-taki/models"
	"go.uber.org/zap"
)

// Outbox accepts encoded frames for one connection without blocking.
type Outbox interface {
	Send(frame []byte)
}

// Dispatcher applies inbound events to the registry and broadcasts the
// resulting state. It is not safe for concurrent use; the Hub serializes
// every call onto one goroutine.
type Dispatcher struct {
	store *db.Store
	conns map[string]Outbox
	log   *zap.Logger
}

// NewDispatcher creates a dispatcher over store
func NewDispatcher(store *db.Store, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		store: store,
		conns: make(map[string]Outbox),
		log:   log,
	}
}

// Connect registers a connection and greets it with its id.
func (d *Dispatcher) Connect(connID string, out Outbox) {
	d.conns[connID] = out
	frame, err := encode(models.EventConnected, map[string]string{"id": connID})
	if err != nil {
		d.log.Error("encode greeting", zap.String("conn", connID), zap.Error(err))
		return
	}
	out.Send(frame)
	d.log.Debug("connection opened", zap.String("conn", connID))
}

// Handle applies one request from connID. A non-nil error means the event was
// ignored: nothing changed and nothing was broadcast.
func (d *Dispatcher) Handle(connID string, req models.Request) error {
	var err error
	if join, ok := req.(models.JoinRequest); ok {
		err = d.join(connID, join)
	} else {
		err = d.apply(connID, req)
	}
	if err != nil {
		sessionID, _ := d.store.Membership(connID)
		d.log.Debug("event ignored",
			zap.String("conn", connID),
			zap.String("session", sessionID),
			zap.String("event", req.EventName()),
			zap.Error(err))
	}
	return err
}

// Disconnect removes connID from its session and forgets the connection.
func (d *Dispatcher) Disconnect(connID string) {
	delete(d.conns, connID)
	d.leave(connID)
	d.log.Debug("connection closed", zap.String("conn", connID))
}

// Snapshot returns the current state of a session.
func (d *Dispatcher) Snapshot(sessionID string) (models.Snapshot, error) {
	session, err := d.store.Get(sessionID)
	if err != nil {
		return models.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Stats reports live sessions and connections.
func (d *Dispatcher) Stats() (sessions, connections int) {
	return d.store.Len(), len(d.conns)
}

// Sweep drops sessions that have no players left.
func (d *Dispatcher) Sweep() int {
	count := d.store.CleanupEmptySessions()
	if count > 0 {
		d.log.Info("cleaned up empty sessions", zap.Int("count", count))
	}
	return count
}

func (d *Dispatcher) join(connID string, req models.JoinRequest) error {
	previous, joined := d.store.Membership(connID)
	if joined && previous == req.SessionID {
		return models.ErrAlreadyJoined
	}

	session, created := d.store.GetOrCreate(req.SessionID, req.Scale)
	if err := session.AddPlayer(connID, req.Name, req.Budget); err != nil {
		if created {
			d.store.DeleteIfEmpty(session.ID)
		}
		return err
	}
	if created {
		d.log.Info("session created",
			zap.String("session", session.ID),
			zap.String("scale", session.Scale.Name))
	}

	if joined {
		d.leave(connID)
	}
	d.store.Bind(connID, session.ID)
	d.log.Info("player joined",
		zap.String("session", session.ID),
		zap.String("conn", connID),
		zap.String("name", req.Name),
		zap.Int("budget", req.Budget))

	d.broadcast(session)
	return nil
}

func (d *Dispatcher) apply(connID string, req models.Request) error {
	session, err := d.store.SessionOf(connID)
	if err != nil {
		return err
	}

	from := session.Phase
	if err := session.Apply(connID, req); err != nil {
		return err
	}
	d.log.Debug("event applied",
		zap.String("session", session.ID),
		zap.String("conn", connID),
		zap.String("event", req.EventName()),
		zap.Stringer("from", from),
		zap.Stringer("to", session.Phase))

	d.broadcast(session)
	return nil
}

// leave runs the departure transition for connID's session, if any.
func (d *Dispatcher) leave(connID string) {
	sessionID, ok := d.store.Unbind(connID)
	if !ok {
		return
	}
	session, err := d.store.Get(sessionID)
	if err != nil {
		d.log.Warn("membership points at missing session",
			zap.String("conn", connID),
			zap.String("session", sessionID))
		return
	}
	if err := session.RemovePlayer(connID); err != nil && !errors.Is(err, models.ErrPlayerNotFound) {
		d.log.Error("remove player", zap.String("session", sessionID), zap.Error(err))
	}
	d.log.Info("player left", zap.String("session", sessionID), zap.String("conn", connID))

	if d.store.DeleteIfEmpty(sessionID) {
		d.log.Info("session deleted", zap.String("session", sessionID))
		return
	}
	d.broadcast(session)
}

// broadcast sends the session snapshot to every member connection.
func (d *Dispatcher) broadcast(session *models.Session) {
	frame, err := encode(models.EventState, session.Snapshot())
	if err != nil {
		d.log.Error("encode state", zap.String("session", session.ID), zap.Error(err))
		return
	}
	for connID := range session.Players {
		if out, ok := d.conns[connID]; ok {
			out.Send(frame)
		}
	}
}

func encode(event string, payload interface{}) ([]byte, error) {
	return json.Marshal(models.Event{Type: event, Payload: payload})
}
