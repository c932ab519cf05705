package services

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"
	"webauthn_ms/domain"
	"webauthn_ms/util"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// RegistrationResult is what a successful attestation verification yields.
type RegistrationResult struct {
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
}

// AssertionResult is what a successful assertion verification yields.
type AssertionResult struct {
	NewSignCount uint32
	CloneWarning bool
}

// IVerificationAdapter wraps the go-webauthn protocol library. It is the only
// place attestations and assertions are decoded and verified; a failure here
// is terminal for the ceremony. There is no fallback verification path.
type IVerificationAdapter interface {
	BeginRegistration(user *domain.User, rp util.RPContext, exclusions []protocol.CredentialDescriptor) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	BeginAuthentication(user *domain.User, rp util.RPContext) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ParseAttestation(r *http.Request) (*protocol.ParsedCredentialCreationData, error)
	ParseAssertion(r *http.Request) (*protocol.ParsedCredentialAssertionData, error)
	VerifyAttestation(user *domain.User, rp util.RPContext, session webauthn.SessionData, parsed *protocol.ParsedCredentialCreationData) (*RegistrationResult, error)
	VerifyAssertion(user *domain.User, rp util.RPContext, session webauthn.SessionData, parsed *protocol.ParsedCredentialAssertionData) (*AssertionResult, error)
}

type VerificationAdapter struct {
	rpDisplayName string
	timeout       time.Duration
}

func NewVerificationAdapter(rpDisplayName string, timeout time.Duration) IVerificationAdapter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &VerificationAdapter{rpDisplayName: rpDisplayName, timeout: timeout}
}

// relyingParty builds a library instance bound to the resolved rp context.
// Instances are cheap; building one per ceremony keeps begin and complete on
// the exact same rp_id/origin pair.
func (a *VerificationAdapter) relyingParty(rp util.RPContext) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: a.rpDisplayName,
		RPID:          rp.RpID,
		RPOrigins:     []string{rp.Origin},
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce:    false,
				Timeout:    a.timeout,
				TimeoutUVD: a.timeout,
			},
			Registration: webauthn.TimeoutConfig{
				Enforce:    false,
				Timeout:    a.timeout,
				TimeoutUVD: a.timeout,
			},
		},
	})
}

func (a *VerificationAdapter) BeginRegistration(user *domain.User, rp util.RPContext, exclusions []protocol.CredentialDescriptor) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	wa, err := a.relyingParty(rp)
	if err != nil {
		return nil, nil, wrapCeremonyError("configure relying party", err)
	}

	options, session, err := wa.BeginRegistration(user,
		webauthn.WithExclusions(exclusions),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			ResidentKey:      protocol.ResidentKeyRequirementPreferred,
			UserVerification: protocol.VerificationPreferred,
		}),
		webauthn.WithConveyancePreference(protocol.PreferDirectAttestation),
	)
	if err != nil {
		return nil, nil, wrapCeremonyError("begin registration", err)
	}
	return options, session, nil
}

func (a *VerificationAdapter) BeginAuthentication(user *domain.User, rp util.RPContext) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	wa, err := a.relyingParty(rp)
	if err != nil {
		return nil, nil, wrapCeremonyError("configure relying party", err)
	}

	options, session, err := wa.BeginLogin(user)
	if err != nil {
		return nil, nil, wrapCeremonyError("begin authentication", err)
	}
	return options, session, nil
}

func (a *VerificationAdapter) ParseAttestation(r *http.Request) (*protocol.ParsedCredentialCreationData, error) {
	parsed, err := protocol.ParseCredentialCreationResponse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttestationInvalid, err)
	}
	return parsed, nil
}

func (a *VerificationAdapter) ParseAssertion(r *http.Request) (*protocol.ParsedCredentialAssertionData, error) {
	parsed, err := protocol.ParseCredentialRequestResponse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return parsed, nil
}

func (a *VerificationAdapter) VerifyAttestation(user *domain.User, rp util.RPContext, session webauthn.SessionData, parsed *protocol.ParsedCredentialCreationData) (*RegistrationResult, error) {
	if err := checkClientData(&parsed.Response.CollectedClientData, session.Challenge, rp, protocol.CreateCeremony, ErrAttestationInvalid); err != nil {
		return nil, err
	}
	if err := checkRPIDHash(parsed.Response.AttestationObject.AuthData.RPIDHash, rp.RpID); err != nil {
		return nil, err
	}

	wa, err := a.relyingParty(rp)
	if err != nil {
		return nil, wrapCeremonyError("configure relying party", err)
	}

	credential, err := wa.CreateCredential(user, session, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttestationInvalid, err)
	}

	return &RegistrationResult{
		CredentialID: credential.ID,
		PublicKey:    credential.PublicKey,
		SignCount:    credential.Authenticator.SignCount,
	}, nil
}

func (a *VerificationAdapter) VerifyAssertion(user *domain.User, rp util.RPContext, session webauthn.SessionData, parsed *protocol.ParsedCredentialAssertionData) (*AssertionResult, error) {
	if err := checkClientData(&parsed.Response.CollectedClientData, session.Challenge, rp, protocol.AssertCeremony, ErrSignatureInvalid); err != nil {
		return nil, err
	}
	if err := checkRPIDHash(parsed.Response.AuthenticatorData.RPIDHash, rp.RpID); err != nil {
		return nil, err
	}

	wa, err := a.relyingParty(rp)
	if err != nil {
		return nil, wrapCeremonyError("configure relying party", err)
	}

	credential, err := wa.ValidateLogin(user, session, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	return &AssertionResult{
		NewSignCount: credential.Authenticator.SignCount,
		CloneWarning: credential.Authenticator.CloneWarning,
	}, nil
}

// checkClientData compares the client-echoed challenge, origin and ceremony
// type against the stored expectations before any cryptographic work, so the
// caller gets a precise mismatch error instead of a generic library failure.
// Challenges are compared byte-for-byte after base64url decoding.
func checkClientData(client *protocol.CollectedClientData, expectedChallenge string, rp util.RPContext, ceremony protocol.CeremonyType, ceremonyErr error) error {
	got, err := util.Base64URLDecode(client.Challenge)
	if err != nil {
		return ErrChallengeMismatch
	}
	want, err := util.Base64URLDecode(expectedChallenge)
	if err != nil {
		return ErrChallengeMismatch
	}
	if !bytes.Equal(got, want) {
		return ErrChallengeMismatch
	}
	if client.Origin != rp.Origin {
		return ErrOriginMismatch
	}
	if client.Type != ceremony {
		return fmt.Errorf("%w: unexpected ceremony type %q", ceremonyErr, client.Type)
	}
	return nil
}

func checkRPIDHash(rpIDHash []byte, rpID string) error {
	expected := sha256.Sum256([]byte(rpID))
	if !bytes.Equal(rpIDHash, expected[:]) {
		return ErrRPIDMismatch
	}
	return nil
}
