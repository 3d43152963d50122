package bank

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/pavelanni/mockinterview/internal/model"
)

// TierCounts maps a tier to the number of questions to draw from it.
type TierCounts map[model.Difficulty]int

// DefaultTierCounts draws two questions from each tier.
var DefaultTierCounts = TierCounts{
	model.DifficultyEasy:   2,
	model.DifficultyMedium: 2,
	model.DifficultyHard:   2,
}

// ErrEmptySelection is returned when the requested counts select nothing.
var ErrEmptySelection = errors.New("question selection is empty")

// InsufficientQuestionsError reports a tier with fewer questions than requested.
type InsufficientQuestionsError struct {
	Tier      model.Difficulty
	Requested int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("tier %s: requested %d questions, only %d available", e.Tier, e.Requested, e.Available)
}

// Check reports whether counts can be satisfied without drawing anything.
func (b *Bank) Check(counts TierCounts) error {
	total := 0
	for d, n := range counts {
		if n < 0 {
			return fmt.Errorf("tier %s: negative count %d", d, n)
		}
		if avail := len(b.questions[d]); n > avail {
			return &InsufficientQuestionsError{Tier: d, Requested: n, Available: avail}
		}
		total += n
	}
	if total == 0 {
		return ErrEmptySelection
	}
	return nil
}

// Select draws counts[tier] questions from each tier without replacement and
// returns them in uniformly shuffled order. A nil r uses the global source.
func (b *Bank) Select(r *rand.Rand, counts TierCounts) ([]model.Question, error) {
	if err := b.Check(counts); err != nil {
		return nil, err
	}

	var selected []model.Question
	for _, d := range model.Tiers {
		n := counts[d]
		if n == 0 {
			continue
		}
		pool := b.QuestionsForTier(d)
		// Partial Fisher-Yates: the first n slots end up a uniform sample.
		for i := 0; i < n; i++ {
			j := i + intN(r, len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		selected = append(selected, pool[:n]...)
	}

	shuffle(r, len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected, nil
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}

func shuffle(r *rand.Rand, n int, swap func(i, j int)) {
	if r == nil {
		rand.Shuffle(n, swap)
		return
	}
	r.Shuffle(n, swap)
}
