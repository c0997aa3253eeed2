package models

import "maps"

// Snapshot builds the broadcast view of the session. Vote values are masked
// while the round is still open.
func (s *Session) Snapshot() Snapshot {
	hidden := s.Phase.BallotHidden()

	players := make(map[string]PlayerSnapshot, len(s.Players))
	for id, p := range s.Players {
		ps := PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Budget:    p.Budget,
			Remaining: p.Remaining,
			Voted:     p.Vote != nil,
			Disputes:  p.Disputes,
		}
		if p.Vote != nil && !hidden {
			v := *p.Vote
			ps.Vote = &v
		}
		players[id] = ps
	}

	tasks := make([]TaskSnapshot, 0, len(s.Tasks))
	var current *TaskSnapshot
	for _, t := range s.Tasks {
		ts := t.snapshot()
		tasks = append(tasks, ts)
		if t.ID == s.CurrentTaskID {
			c := ts
			current = &c
		}
	}

	snap := Snapshot{
		ID:          s.ID,
		Phase:       s.Phase,
		Scale:       s.Scale.View(),
		Players:     players,
		Tasks:       tasks,
		CurrentTask: current,
	}
	if s.ReprVote != nil {
		snap.ReprVote = &BallotSnapshot{
			Yes:    s.ReprVote.Yes,
			No:     s.ReprVote.No,
			Voters: maps.Clone(s.ReprVote.Voters),
		}
	}
	if s.Timer != nil {
		ms := s.Timer.UnixMilli()
		snap.Timer = &ms
	}
	if s.TaskToReprioritizeID != "" {
		id := s.TaskToReprioritizeID
		snap.TaskToReprioritizeID = &id
	}
	return snap
}

func (t *Task) snapshot() TaskSnapshot {
	ts := TaskSnapshot{
		ID:     t.ID,
		Title:  t.Title,
		Owner:  t.Owner,
		Status: t.Status,
	}
	if t.Points != nil {
		p := *t.Points
		ts.Points = &p
	}
	return ts
}
