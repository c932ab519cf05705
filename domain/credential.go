package domain

import "time"

// WebAuthnCredential is a registered public-key credential. CredentialID is
// unique across all users, enforced by the database so two racing
// registration-complete calls cannot both insert it.
type WebAuthnCredential struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	CredentialID []byte     `gorm:"not null;unique" json:"credential_id"`
	PublicKey    []byte     `gorm:"not null" json:"public_key"`
	SignCount    uint32     `gorm:"not null;default:0" json:"sign_count"`
	RpID         string     `gorm:"size:255;not null" json:"rp_id"`
	DisplayName  string     `gorm:"size:255;not null" json:"display_name"`
	CreatedAt    *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastUsedAt   *time.Time `gorm:"default:null" json:"last_used_at"`
}

func (WebAuthnCredential) TableName() string {
	return "webauthn_credentials"
}
