package domain

import (
	"sort"
	"time"
)

type WeightEntry struct {
	Date   time.Time `bson:"date" json:"date"`
	Weight float64   `bson:"weight" json:"weight"`
}

type PersonalRecordEntry struct {
	ID       string    `bson:"id" json:"id"`
	Date     time.Time `bson:"date" json:"date"`
	Exercise string    `bson:"exercise" json:"exercise"`
	Value    string    `bson:"value" json:"value"` // e.g. "100kg x 5 reps"
}

// UserProgress holds the per-owner logs. WeightLog is kept ascending by date.
type UserProgress struct {
	Email           string                `bson:"_id" json:"email"`
	WeightLog       []WeightEntry         `bson:"weightLog" json:"weightLog"`
	PersonalRecords []PersonalRecordEntry `bson:"personalRecords" json:"personalRecords"`
}

// NewUserProgress returns an empty progress record for email.
func NewUserProgress(email string) *UserProgress {
	return &UserProgress{
		Email:           NormalizeEmail(email),
		WeightLog:       []WeightEntry{},
		PersonalRecords: []PersonalRecordEntry{},
	}
}

// AddWeight inserts e keeping the log sorted. Entries with equal dates keep insertion order.
func (p *UserProgress) AddWeight(e WeightEntry) {
	i := sort.Search(len(p.WeightLog), func(i int) bool {
		return p.WeightLog[i].Date.After(e.Date)
	})
	p.WeightLog = append(p.WeightLog, WeightEntry{})
	copy(p.WeightLog[i+1:], p.WeightLog[i:])
	p.WeightLog[i] = e
}

// RemoveWeight drops every entry logged at exactly date and reports whether any matched.
func (p *UserProgress) RemoveWeight(date time.Time) bool {
	kept := p.WeightLog[:0]
	removed := false
	for _, e := range p.WeightLog {
		if e.Date.Equal(date) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	p.WeightLog = kept
	return removed
}

// AddPersonalRecord puts r first so the newest record shows at the top.
func (p *UserProgress) AddPersonalRecord(r PersonalRecordEntry) {
	p.PersonalRecords = append([]PersonalRecordEntry{r}, p.PersonalRecords...)
}

func (p *UserProgress) RemovePersonalRecord(id string) bool {
	for i, r := range p.PersonalRecords {
		if r.ID == id {
			p.PersonalRecords = append(p.PersonalRecords[:i], p.PersonalRecords[i+1:]...)
			return true
		}
	}
	return false
}
