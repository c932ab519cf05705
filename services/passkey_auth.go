package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"webauthn_ms/domain"
	"webauthn_ms/dtos/request"
	"webauthn_ms/dtos/response"
	"webauthn_ms/repository"
	"webauthn_ms/util"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/hashicorp/go-uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SignCountPolicy controls how a non-increasing authenticator sign counter is
// treated at authentication-complete.
type SignCountPolicy string

const (
	PolicyStrict  SignCountPolicy = "strict"
	PolicyLenient SignCountPolicy = "lenient"
)

// ParseSignCountPolicy defaults to strict; lenient must be opted into.
func ParseSignCountPolicy(raw string) SignCountPolicy {
	if raw == string(PolicyLenient) {
		return PolicyLenient
	}
	return PolicyStrict
}

type IPasskeyService interface {
	RegisterBegin(ctx context.Context, userID uint, scheme, host, keyName string) (*response.RegistrationCeremony, error)
	RegisterComplete(ctx context.Context, userID uint, ceremonyToken, scheme, host string, r *http.Request) (*response.RegisteredKey, error)
	AuthenticateBegin(ctx context.Context, username, scheme, host string) (*response.AuthenticationCeremony, error)
	AuthenticateComplete(ctx context.Context, ceremonyToken, scheme, host string, r *http.Request) (*domain.User, *domain.WebAuthnCredential, error)
	ListKeys(ctx context.Context, userID uint) ([]response.KeyInfo, error)
	DeleteKey(ctx context.Context, userID uint, keyID uint) error
	UsersWithKeys(ctx context.Context) ([]response.UserWithKeys, error)
}

type PasskeyService struct {
	db       *gorm.DB
	userRepo repository.IUserRepository
	credRepo repository.ICredentialRepository
	store    IChallengeStore
	adapter  IVerificationAdapter
	logger   *zap.Logger
	policy   SignCountPolicy
	// pinned overrides per-request rp context resolution when configured.
	pinned *util.RPContext
}

func NewPasskeyService(db *gorm.DB, userRepo repository.IUserRepository, credRepo repository.ICredentialRepository,
	store IChallengeStore, adapter IVerificationAdapter, logger *zap.Logger, policy SignCountPolicy, pinned *util.RPContext) IPasskeyService {
	return &PasskeyService{
		db:       db,
		userRepo: userRepo,
		credRepo: credRepo,
		store:    store,
		adapter:  adapter,
		logger:   logger,
		policy:   policy,
		pinned:   pinned,
	}
}

// rpContext resolves the relying-party context for the ceremony. Must yield
// the same result at begin and complete or verification fails closed.
func (ps *PasskeyService) rpContext(scheme, host string) util.RPContext {
	if ps.pinned != nil {
		return *ps.pinned
	}
	return util.ResolveRPContext(scheme, host)
}

// RegisterBegin starts a registration ceremony for an authenticated user and
// stores the pending challenge, overwriting any earlier one for the token.
func (ps *PasskeyService) RegisterBegin(ctx context.Context, userID uint, scheme, host, keyName string) (*response.RegistrationCeremony, error) {
	user, err := ps.userRepo.GetByIDWithCredentials(ps.db.WithContext(ctx), userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if keyName == "" {
		keyName = "Key added " + time.Now().Format("02.01.2006 15:04")
	}

	rp := ps.rpContext(scheme, host)

	// Existing keys go on the exclusion list so the same authenticator
	// cannot be enrolled twice.
	exclusions := make([]protocol.CredentialDescriptor, 0, len(user.Credentials))
	for _, cred := range user.Credentials {
		exclusions = append(exclusions, protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: cred.CredentialID,
		})
	}

	options, session, err := ps.adapter.BeginRegistration(user, rp, exclusions)
	if err != nil {
		return nil, err
	}

	token, err := uuid.GenerateUUID()
	if err != nil {
		return nil, wrapCeremonyError("generate ceremony token", err)
	}

	pending := &domain.PendingChallenge{
		CeremonyToken: token,
		Purpose:       domain.PurposeRegister,
		PrincipalHint: user.Username,
		KeyName:       keyName,
		CreatedAt:     time.Now(),
		Session:       *session,
	}
	if err := ps.store.Put(ctx, pending); err != nil {
		return nil, wrapCeremonyError("store pending challenge", err)
	}

	return &response.RegistrationCeremony{CeremonyToken: token, Options: options}, nil
}

// RegisterComplete verifies the attestation and persists the new credential.
// The pending challenge is consumed up front, so the ceremony is single-use
// on every exit path.
func (ps *PasskeyService) RegisterComplete(ctx context.Context, userID uint, ceremonyToken, scheme, host string, r *http.Request) (*response.RegisteredKey, error) {
	pending, err := ps.store.Take(ctx, ceremonyToken)
	if err != nil {
		return nil, err
	}
	if pending.Purpose != domain.PurposeRegister {
		return nil, ErrChallengeExpired
	}

	user, err := ps.userRepo.GetByIDWithCredentials(ps.db.WithContext(ctx), userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	// The challenge is bound to the principal that began the ceremony.
	if pending.PrincipalHint != user.Username {
		return nil, ErrChallengeExpired
	}

	parsed, err := ps.adapter.ParseAttestation(r)
	if err != nil {
		return nil, err
	}

	rp := ps.rpContext(scheme, host)
	result, err := ps.adapter.VerifyAttestation(user, rp, pending.Session, parsed)
	if err != nil {
		return nil, err
	}

	// Fast duplicate check; the UNIQUE constraint on credential_id decides
	// the race between two concurrent completions.
	if _, err := ps.credRepo.FindByCredentialID(ps.db.WithContext(ctx), result.CredentialID); err == nil {
		return nil, ErrDuplicateCredential
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapCeremonyError("check credential uniqueness", err)
	}

	credential := &domain.WebAuthnCredential{
		UserID:       user.Id,
		CredentialID: result.CredentialID,
		PublicKey:    result.PublicKey,
		SignCount:    result.SignCount,
		RpID:         rp.RpID,
		DisplayName:  pending.KeyName,
	}
	if err := ps.credRepo.Insert(ps.db.WithContext(ctx), credential); err != nil {
		if errors.Is(err, repository.ErrDuplicateCredentialID) {
			return nil, ErrDuplicateCredential
		}
		return nil, wrapCeremonyError("persist credential", err)
	}

	return &response.RegisteredKey{ID: credential.ID, KeyName: credential.DisplayName}, nil
}

// AuthenticateBegin starts an authentication ceremony for a username. The
// caller is not authenticated yet.
func (ps *PasskeyService) AuthenticateBegin(ctx context.Context, username, scheme, host string) (*response.AuthenticationCeremony, error) {
	user, err := ps.userRepo.GetByUsernameWithCredentials(ps.db.WithContext(ctx), username)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if len(user.Credentials) == 0 {
		return nil, ErrNoCredentials
	}

	rp := ps.rpContext(scheme, host)
	options, session, err := ps.adapter.BeginAuthentication(user, rp)
	if err != nil {
		return nil, err
	}

	token, err := uuid.GenerateUUID()
	if err != nil {
		return nil, wrapCeremonyError("generate ceremony token", err)
	}

	pending := &domain.PendingChallenge{
		CeremonyToken: token,
		Purpose:       domain.PurposeAuthenticate,
		PrincipalHint: user.Username,
		CreatedAt:     time.Now(),
		Session:       *session,
	}
	if err := ps.store.Put(ctx, pending); err != nil {
		return nil, wrapCeremonyError("store pending challenge", err)
	}

	return &response.AuthenticationCeremony{CeremonyToken: token, Options: options}, nil
}

// AuthenticateComplete verifies the assertion, applies the clone-detection
// policy and hands back the authenticated user. Session/token issuance is the
// caller's responsibility. No credential state is mutated on failure.
func (ps *PasskeyService) AuthenticateComplete(ctx context.Context, ceremonyToken, scheme, host string, r *http.Request) (*domain.User, *domain.WebAuthnCredential, error) {
	pending, err := ps.store.Take(ctx, ceremonyToken)
	if err != nil {
		return nil, nil, err
	}
	if pending.Purpose != domain.PurposeAuthenticate {
		return nil, nil, ErrChallengeExpired
	}

	parsed, err := ps.adapter.ParseAssertion(r)
	if err != nil {
		return nil, nil, err
	}

	credential, err := ps.credRepo.FindByCredentialID(ps.db.WithContext(ctx), parsed.RawID)
	if err != nil {
		return nil, nil, ErrCredentialNotFound
	}

	user, err := ps.userRepo.GetByIDWithCredentials(ps.db.WithContext(ctx), credential.UserID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}

	rp := ps.rpContext(scheme, host)
	result, err := ps.adapter.VerifyAssertion(user, rp, pending.Session, parsed)
	if err != nil {
		return nil, nil, err
	}

	if result.CloneWarning {
		if ps.policy == PolicyStrict {
			return nil, nil, ErrCloneSuspected
		}
		ps.logger.Warn("sign counter did not increase, possible cloned authenticator",
			zap.String("username", user.Username),
			zap.Uint32("stored_sign_count", credential.SignCount),
			zap.Uint32("new_sign_count", result.NewSignCount),
		)
	}

	// The stored counter is set to exactly the asserted value when it
	// increased and is never decreased (lenient acceptance of a stale
	// counter keeps the high-water mark).
	newCount := credential.SignCount
	if result.NewSignCount > credential.SignCount {
		newCount = result.NewSignCount
	}
	now := time.Now()
	if err := ps.credRepo.UpdateSignCount(ps.db.WithContext(ctx), credential.CredentialID, newCount, &now); err != nil {
		return nil, nil, wrapCeremonyError("update sign count", err)
	}
	credential.SignCount = newCount
	credential.LastUsedAt = &now

	// Student portal keeps a profile per authenticated student; best-effort
	// event, authentication does not fail on broker trouble.
	if user.Role == domain.RoleStudent {
		event := &request.StudentAuthenticatedEvent{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			StudentID: user.StudentID,
		}
		if err := SendStudentAuthenticatedEvent(event); err != nil {
			ps.logger.Warn("failed to publish student profile sync event",
				zap.String("username", user.Username), zap.Error(err))
		}
	}

	return user, credential, nil
}

// ListKeys returns the principal's credentials, newest first.
func (ps *PasskeyService) ListKeys(ctx context.Context, userID uint) ([]response.KeyInfo, error) {
	credentials, err := ps.credRepo.FindByUser(ps.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	keys := make([]response.KeyInfo, 0, len(credentials))
	for _, cred := range credentials {
		keys = append(keys, response.KeyInfo{
			ID:         cred.ID,
			KeyName:    cred.DisplayName,
			RpID:       cred.RpID,
			SignCount:  cred.SignCount,
			CreatedAt:  cred.CreatedAt,
			LastUsedAt: cred.LastUsedAt,
		})
	}
	return keys, nil
}

// DeleteKey removes a credential owned by the principal. A miss and a
// foreign credential are indistinguishable to the caller.
func (ps *PasskeyService) DeleteKey(ctx context.Context, userID uint, keyID uint) error {
	if err := ps.credRepo.DeleteOwned(ps.db.WithContext(ctx), userID, keyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCredentialNotFound
		}
		return err
	}
	return nil
}

func (ps *PasskeyService) UsersWithKeys(ctx context.Context) ([]response.UserWithKeys, error) {
	rows, err := ps.credRepo.UsersWithKeys(ps.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	users := make([]response.UserWithKeys, 0, len(rows))
	for _, row := range rows {
		fullName := strings.TrimSpace(row.FirstName + " " + row.LastName)
		users = append(users, response.UserWithKeys{
			Username:  row.Username,
			FullName:  fullName,
			KeysCount: row.KeysCount,
		})
	}
	return users, nil
}
