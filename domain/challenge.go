package domain

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

// CeremonyPurpose distinguishes registration from authentication ceremonies.
type CeremonyPurpose string

const (
	PurposeRegister     CeremonyPurpose = "REGISTER"
	PurposeAuthenticate CeremonyPurpose = "AUTHENTICATE"
)

// PendingChallenge is the ephemeral state of one begin/complete ceremony,
// keyed by its ceremony token. At most one live challenge exists per token;
// a new begin overwrites the previous one. Session holds the library session
// data (challenge, user handle, allow-list, expiry) needed at complete.
type PendingChallenge struct {
	CeremonyToken string               `json:"ceremony_token"`
	Purpose       CeremonyPurpose      `json:"purpose"`
	PrincipalHint string               `json:"principal_hint"`
	KeyName       string               `json:"key_name,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Session       webauthn.SessionData `json:"session"`
}
