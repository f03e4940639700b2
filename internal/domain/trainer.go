package domain

import "strings"

// Specialty tags used by trainer assignment.
type Specialty string

const (
	SpecialtyWeightLoss   Specialty = "Weight Loss"
	SpecialtyBodybuilding Specialty = "Bodybuilding"
	SpecialtyLeanBody     Specialty = "Lean Body"
)

// Specialty maps a goal to the specialty that serves it.
func (g Goal) Specialty() (Specialty, bool) {
	switch g {
	case GoalLoseWeight:
		return SpecialtyWeightLoss, true
	case GoalGainMuscle:
		return SpecialtyBodybuilding, true
	case GoalGetShredded:
		return SpecialtyLeanBody, true
	}
	return "", false
}

// Trainer is a roster member with write authority over plan status.
type Trainer struct {
	Name         string      `mapstructure:"name" json:"name"`
	Specialties  []Specialty `mapstructure:"specialties" json:"specialties"`
	PasswordHash string      `mapstructure:"password_hash" json:"-"`
}

// TrainerKey is the lookup form of a trainer name. Roster names are unique under it.
func TrainerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Is reports whether name refers to this trainer.
func (t Trainer) Is(name string) bool {
	return TrainerKey(t.Name) == TrainerKey(name)
}

func (t Trainer) HasSpecialty(s Specialty) bool {
	for _, sp := range t.Specialties {
		if sp == s {
			return true
		}
	}
	return false
}

// ChatRole is who authored a chat message.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role ChatRole `json:"role" binding:"required,oneof=user model"`
	Text string   `json:"text" binding:"required"`
}
