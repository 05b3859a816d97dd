package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/repository"
	"github.com/taskdo/backend/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	// Mismatch is apperrors.ErrIncorrectPassword
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign token payloads
	SecretKey string

	// Hasher to use during registration or login
	// Argon2id with default parameters if not set
	Hasher PasswordHasher

	// Access and refresh token lifetimes
	// Token manager defaults apply when zero
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AuthService owns the login and refresh-rotation flows.
// It persists only a sha256 digest of each refresh token: the raw token is
// returned to the caller exactly once and can never be recovered from storage.
type AuthService struct {
	token   *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	token, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  cfg.SecretKey,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	return &AuthService{
		token:   token,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Register creates the user and logs it in right away
func (s *AuthService) Register(ctx context.Context, name string, email string, password string) (models.User, models.TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err := s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, s.storage, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// Login verifies credentials and issues a fresh token pair.
// Unknown email is apperrors.ErrUserNotFound, wrong password is
// apperrors.ErrIncorrectPassword. No session row is written on failure.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.TokenPair{}, err
	}

	return s.issuePair(ctx, s.storage, user.ID)
}

// Refresh rotates the presented refresh token: the matched session is revoked
// and its successor inserted within one transaction, so replaying a rotated
// token always fails and two racing rotations can't both win.
// Every way the token can be bad (never issued, revoked, expired, malformed)
// surfaces as a typed error the HTTP layer maps to one generic 401.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (models.TokenPair, error) {
	var pair models.TokenPair
	digest := hashToken(rawRefresh)
	now := time.Now()

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		// Revoke first: of two concurrent rotations only one can observe the
		// session active, the loser gets ErrSessionNotFound
		session, err := store.Session().Revoke(ctx, digest, now)
		if err != nil {
			return err
		}

		// The digest matched a stored session, now the token itself must still
		// carry a valid signature, type tag and expiry
		claims, err := s.token.Parse(rawRefresh, tokenmanager.TypeRefresh)
		if err != nil {
			return err
		}

		userID, err := claims.UserID()
		if err != nil {
			return err
		}
		if userID != session.UserID {
			return fmt.Errorf("token subject mismatch: %w", apperrors.ErrTokenInvalid)
		}

		pair, err = s.issuePair(ctx, store, userID)
		return err
	})
	if err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Logout revokes every active session of the user
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	_, err := s.storage.Session().RevokeAllForUser(ctx, userID, time.Now())
	return err
}

// ParseAccess validates an access token and returns the acting user id
func (s *AuthService) ParseAccess(raw string) (int64, error) {
	claims, err := s.token.Parse(raw, tokenmanager.TypeAccess)
	if err != nil {
		return 0, err
	}

	return claims.UserID()
}

// issuePair mints a token pair and persists the refresh session through the
// given storage (the caller decides whether that is a transaction)
func (s *AuthService) issuePair(ctx context.Context, store repository.Storage, userID int64) (models.TokenPair, error) {
	access, err := s.token.CreateAccess(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, _, err := s.token.CreateRefresh(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	// The row id is generated here and is independent from the token's jti
	_, err = store.Session().Create(ctx, models.RefreshSession{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(refresh.Value),
		CreatedAt: time.Now().Truncate(time.Second),
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh session. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// hashToken returns the sha256 hex digest used as the session lookup key.
// The input is a signed token carrying at least 128 bits of randomness,
// not a guessable password, so no slow hash is involved.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
