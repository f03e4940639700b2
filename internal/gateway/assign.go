package gateway

import (
	"errors"
	"sync"

	"alcyxob/ifit-coach/internal/domain"
)

const (
	specialistWeight = 5
	generalWeight    = 1
)

var ErrEmptyRoster = errors.New("gateway: trainer roster is empty")

// RandSource is the injected randomness. *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

// Assigner picks a trainer for a new plan. Specialists for the goal get weight 5, everyone
// else weight 1, so every trainer keeps a nonzero chance.
type Assigner struct {
	roster []domain.Trainer
	mu     sync.Mutex
	rnd    RandSource
}

func NewAssigner(roster []domain.Trainer, rnd RandSource) (*Assigner, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	cp := make([]domain.Trainer, len(roster))
	copy(cp, roster)
	return &Assigner{roster: cp, rnd: rnd}, nil
}

// Roster returns a copy of the trainer list.
func (a *Assigner) Roster() []domain.Trainer {
	cp := make([]domain.Trainer, len(a.roster))
	copy(cp, a.roster)
	return cp
}

// Weights returns the per-trainer weight for goal, in roster order.
func (a *Assigner) Weights(goal domain.Goal) []int {
	weights := make([]int, len(a.roster))
	specialty, ok := goal.Specialty()
	for i, t := range a.roster {
		weights[i] = generalWeight
		if ok && t.HasSpecialty(specialty) {
			weights[i] = specialistWeight
		}
	}
	return weights
}

// Assign draws one trainer. An empty or unknown goal gives a uniform draw.
func (a *Assigner) Assign(goal domain.Goal) domain.Trainer {
	weights := a.Weights(goal)
	total := 0
	for _, w := range weights {
		total += w
	}

	a.mu.Lock()
	n := a.rnd.IntN(total)
	a.mu.Unlock()

	for i, w := range weights {
		if n < w {
			return a.roster[i]
		}
		n -= w
	}
	return a.roster[len(a.roster)-1]
}

// Lookup finds a roster member by name, case-insensitively.
func (a *Assigner) Lookup(name string) (domain.Trainer, bool) {
	for _, t := range a.roster {
		if t.Is(name) {
			return t, true
		}
	}
	return domain.Trainer{}, false
}
