package domain

import (
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// Role is the closed set of user roles known to the academic system.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a raw role value to one of the known roles.
// Unknown values fall back to STUDENT, matching the user directory default.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(raw)) {
	case RoleTeacher:
		return RoleTeacher
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStudent
	}
}

type User struct {
	Id          uint                 `gorm:"primaryKey" json:"id"`
	CreatedAt   *time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   *time.Time           `gorm:"default:null" json:"updated_at"`
	Username    string               `gorm:"size:100;not null;unique" json:"username"`
	Password    string               `gorm:"size:100;not null" json:"-"`
	FirstName   string               `gorm:"size:100" json:"first_name"`
	LastName    string               `gorm:"size:100" json:"last_name"`
	Email       string               `gorm:"size:100" json:"email"`
	Role        Role                 `gorm:"size:10;not null;default:STUDENT" json:"role"`
	StudentID   string               `gorm:"size:50" json:"student_id"`
	Department  string               `gorm:"size:200" json:"department"`
	Position    string               `gorm:"size:100" json:"position"`
	Credentials []WebAuthnCredential `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"webauthn_credentials"`
}

func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) WebAuthnID() []byte {
	return []byte(u.Username)
}

func (u User) WebAuthnName() string {
	return u.Username
}

func (u User) WebAuthnDisplayName() string {
	return u.FullName()
}

func (u User) WebAuthnCredentials() []webauthn.Credential {
	var creds []webauthn.Credential
	for _, c := range u.Credentials {
		creds = append(creds, webauthn.Credential{
			ID:        c.CredentialID,
			PublicKey: c.PublicKey,
			Authenticator: webauthn.Authenticator{
				SignCount: c.SignCount,
			},
		})
	}
	return creds
}
