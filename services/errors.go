package services

import (
	"errors"
	"fmt"
)

// Ceremony failures are terminal: none are retried, the client restarts at
// begin. Every one of them also discards the pending challenge.
var (
	// ErrChallengeExpired is returned when no pending challenge exists for
	// the ceremony token, whether never begun, already consumed or expired.
	ErrChallengeExpired = errors.New("ceremony challenge expired or missing")

	// ErrChallengeMismatch is returned when the client-echoed challenge does
	// not equal the stored challenge byte-for-byte.
	ErrChallengeMismatch = errors.New("client data challenge does not match stored challenge")

	// ErrOriginMismatch is returned when the client data origin does not
	// match the resolved relying-party origin.
	ErrOriginMismatch = errors.New("client data origin does not match relying party origin")

	// ErrRPIDMismatch is returned when the authenticator data was produced
	// for a different relying-party id.
	ErrRPIDMismatch = errors.New("authenticator data rp id does not match relying party id")

	// ErrAttestationInvalid is returned when attestation verification fails.
	// There is deliberately no fallback path behind this error.
	ErrAttestationInvalid = errors.New("attestation verification failed")

	// ErrSignatureInvalid is returned when assertion verification fails.
	ErrSignatureInvalid = errors.New("assertion verification failed")

	// ErrDuplicateCredential is returned when the credential id is already
	// registered, for any user.
	ErrDuplicateCredential = errors.New("credential already registered")

	// ErrCredentialNotFound covers both a missing credential and a
	// credential owned by someone else, so existence does not leak.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrUserNotFound is returned when the user cannot be resolved.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoCredentials is returned when the user has no registered keys.
	ErrNoCredentials = errors.New("user has no registered credentials")

	// ErrCloneSuspected is returned in strict mode when the sign counter
	// did not increase.
	ErrCloneSuspected = errors.New("possible cloned authenticator detected")

	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned on a failed password login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// CeremonyError wraps an internal failure with the operation that produced
// it, so library errors cross the trust boundary wrapped rather than raw.
type CeremonyError struct {
	Op  string
	Err error
}

func (e *CeremonyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

func (e *CeremonyError) Unwrap() error {
	return e.Err
}

func wrapCeremonyError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CeremonyError{Op: op, Err: err}
}
