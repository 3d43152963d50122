package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/pavelanni/mockinterview/internal/model"
)

// ErrNotFound is returned when a completed candidate does not exist.
var ErrNotFound = errors.New("not found")

// AppendCompleted adds a finished interview to the completed list, keeping
// it sorted newest first by completion time.
func (s *Store) AppendCompleted(c model.CompletedCandidate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	raw, _, err := get(tx, KeyCandidates)
	if err != nil {
		return fmt.Errorf("read candidates: %w", err)
	}
	list, err := decodeCandidates(raw)
	if err != nil {
		return err
	}

	list = append(list, c)
	sortNewestFirst(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	if err := set(tx, KeyCandidates, string(data)); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	return tx.Commit()
}

// ListCompleted returns every completed candidate, newest first.
func (s *Store) ListCompleted() ([]model.CompletedCandidate, error) {
	raw, _, err := s.Get(KeyCandidates)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	list, err := decodeCandidates(raw)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// GetCompleted returns the completed candidate with the given ID.
func (s *Store) GetCompleted(id string) (model.CompletedCandidate, error) {
	list, err := s.ListCompleted()
	if err != nil {
		return model.CompletedCandidate{}, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return model.CompletedCandidate{}, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
}

// CompletedCount returns the number of completed interviews.
func (s *Store) CompletedCount() (int, error) {
	list, err := s.ListCompleted()
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func decodeCandidates(raw string) ([]model.CompletedCandidate, error) {
	if raw == "" {
		return nil, nil
	}
	var list []model.CompletedCandidate
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return list, nil
}

func sortNewestFirst(list []model.CompletedCandidate) {
	slices.SortStableFunc(list, func(a, b model.CompletedCandidate) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
}
