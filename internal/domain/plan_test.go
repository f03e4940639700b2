package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from PlanStatus
		to   PlanStatus
		want bool
	}{
		{PlanStatusPending, PlanStatusApproved, true},
		{PlanStatusPending, PlanStatusRejected, true},
		{PlanStatusPending, PlanStatusPending, false},
		{PlanStatusApproved, PlanStatusRejected, false},
		{PlanStatusRejected, PlanStatusApproved, false},
		{PlanStatusApproved, PlanStatusPending, false},
		{PlanStatusRejected, PlanStatusPending, false},
		{PlanStatusPending, PlanStatus("archived"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPlanUpdate_Apply(t *testing.T) {
	p := &PendingWorkoutPlan{ID: "p1", Status: PlanStatusPending}
	approved := PlanStatusApproved
	notes := "Great job"
	now := time.Now().UTC()

	PlanUpdate{Status: &approved, TrainerNotes: &notes, ApprovedAt: &now}.Apply(p)

	assert.Equal(t, PlanStatusApproved, p.Status)
	assert.Equal(t, "Great job", p.TrainerNotes)
	if assert.NotNil(t, p.ApprovedAt) {
		assert.True(t, p.ApprovedAt.Equal(now))
	}
	assert.True(t, p.Exportable())

	PlanUpdate{}.Apply(p)
	assert.Equal(t, "Great job", p.TrainerNotes, "nil fields leave the plan untouched")
}

func TestAnswerRecord_Clone(t *testing.T) {
	waist := 90.0
	a := &AnswerRecord{Name: "Sam", WaistCm: &waist}
	c := a.Clone()
	*c.WaistCm = 100
	c.Name = "Other"

	assert.Equal(t, 90.0, *a.WaistCm)
	assert.Equal(t, "Sam", a.Name)
	assert.Nil(t, (*AnswerRecord)(nil).Clone())
}
