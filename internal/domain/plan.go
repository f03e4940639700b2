package domain

import "time"

// PlanStatus type for the review lifecycle
type PlanStatus string

const (
	PlanStatusPending  PlanStatus = "pending"  // Awaiting trainer review
	PlanStatusApproved PlanStatus = "approved" // Terminal, eligible for export
	PlanStatusRejected PlanStatus = "rejected" // Terminal, needs further trainer review
)

func (s PlanStatus) Valid() bool {
	return s == PlanStatusPending || s == PlanStatusApproved || s == PlanStatusRejected
}

// IsDecision reports whether s is a status a trainer may decide.
func (s PlanStatus) IsDecision() bool {
	return s == PlanStatusApproved || s == PlanStatusRejected
}

// CanTransitionTo allows only pending -> approved and pending -> rejected.
func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	return s == PlanStatusPending && next.IsDecision()
}

// PendingWorkoutPlan is the unit of work flowing through trainer review.
type PendingWorkoutPlan struct {
	ID                  string        `bson:"_id" json:"id"` // UUIDv7, time ordered
	UserEmail           string        `bson:"userEmail" json:"userEmail"`
	UserEmailKey        string        `bson:"userEmailKey" json:"-"` // lowercased lookup key
	UserName            string        `bson:"userName" json:"userName"`
	AssignedTrainerName string        `bson:"assignedTrainerName" json:"assignedTrainerName"`
	AssignedTrainerKey  string        `bson:"assignedTrainerKey" json:"-"` // TrainerKey of the name
	Status              PlanStatus    `bson:"status" json:"status"`
	GeneratedAt         time.Time     `bson:"generatedAt" json:"generatedAt"`
	ApprovedAt          *time.Time    `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	PlanData            PlanData      `bson:"planData" json:"planData"`
	QuizData            *AnswerRecord `bson:"quizData" json:"quizData"`
	TrainerNotes        string        `bson:"trainerNotes,omitempty" json:"trainerNotes,omitempty"`
}

// Exportable is true only for approved plans.
func (p *PendingWorkoutPlan) Exportable() bool {
	return p.Status == PlanStatusApproved
}

// PlanUpdate is a partial update. Nil fields are left untouched. When ExpectStatus is set
// the update only applies if the stored status still equals it.
type PlanUpdate struct {
	ExpectStatus *PlanStatus
	Status       *PlanStatus
	TrainerNotes *string
	ApprovedAt   *time.Time
}

// Apply merges u into p. It does not check ExpectStatus.
func (u PlanUpdate) Apply(p *PendingWorkoutPlan) {
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.TrainerNotes != nil {
		p.TrainerNotes = *u.TrainerNotes
	}
	if u.ApprovedAt != nil {
		t := *u.ApprovedAt
		p.ApprovedAt = &t
	}
}
