package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a signed-up client account. Trainers come from the configured roster
// and are never stored in the users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // Stored lowercased, unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	AvatarURL    string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Profile-embedded copy of the most recent completed assessment.
	LatestAssessment *Assessment `bson:"latestAssessment,omitempty" json:"latestAssessment,omitempty"`
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// Principal is the authenticated actor behind a request. Subject is the user ObjectID hex
// for clients and the roster name for trainers.
type Principal struct {
	Subject string
	Name    string
	Email   string
	Role    Role
}

func (p Principal) IsTrainer() bool {
	return p.Role == RoleTrainer && p.Subject != ""
}

// NormalizeEmail is the canonical form used as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
