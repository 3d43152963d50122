package store

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pavelanni/mockinterview/internal/model"
)

// SaveSnapshot overwrites the in-progress interview snapshot.
func (s *Store) SaveSnapshot(sess model.Snapshot) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Set(KeyCurrentInterview, string(data)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the saved snapshot, or nil when there is none.
// A snapshot that cannot be decoded or fails the answer/index check is
// deleted and reported as missing.
func (s *Store) LoadSnapshot() (*model.Snapshot, error) {
	raw, ok, err := s.Get(KeyCurrentInterview)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var sess model.Snapshot
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		slog.Warn("discarding corrupt interview snapshot", "error", err)
		return nil, s.DeleteSnapshot()
	}
	if len(sess.Interview.Questions) == 0 || !sess.Consistent() {
		slog.Warn("discarding inconsistent interview snapshot",
			"questions", len(sess.Interview.Questions),
			"answers", len(sess.Interview.Answers),
			"index", sess.Interview.CurrentQuestionIndex)
		return nil, s.DeleteSnapshot()
	}
	return &sess, nil
}

// DeleteSnapshot removes the in-progress snapshot.
func (s *Store) DeleteSnapshot() error {
	if err := s.Delete(KeyCurrentInterview); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
