package response

import (
	"time"

	"github.com/go-webauthn/webauthn/protocol"
)

// RegistrationCeremony is returned by register-begin. Options carry the
// PublicKeyCredentialCreationOptions with binary fields base64url-encoded;
// the ceremony token must be echoed back at register-complete.
type RegistrationCeremony struct {
	CeremonyToken string                       `json:"ceremony_token"`
	Options       *protocol.CredentialCreation `json:"options"`
}

// AuthenticationCeremony is returned by authenticate-begin.
type AuthenticationCeremony struct {
	CeremonyToken string                        `json:"ceremony_token"`
	Options       *protocol.CredentialAssertion `json:"options"`
}

type RegisteredKey struct {
	ID      uint   `json:"id"`
	KeyName string `json:"key_name"`
}

type KeyInfo struct {
	ID         uint       `json:"id"`
	KeyName    string     `json:"key_name"`
	RpID       string     `json:"rp_id"`
	SignCount  uint32     `json:"sign_count"`
	CreatedAt  *time.Time `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

type UserWithKeys struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	KeysCount int64  `json:"keys_count"`
}
