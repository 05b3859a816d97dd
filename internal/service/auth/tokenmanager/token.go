package tokenmanager

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/models"
)

// Token type tags embedded in claims. An access token can never be replayed
// as a refresh token (and vice versa): Parse checks the tag it was asked for.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 14 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
)

type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// UserID returns the subject as the numeric user id
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad subject %q: %w", c.Subject, apperrors.ErrTokenInvalid)
	}
	return id, nil
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign token payloads
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set the default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set the defaults are used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	key        string
	alg        jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// CreateAccess mints a short-lived access token for the user
func (m *TokenManager) CreateAccess(userID int64) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	value, err := m.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TypeAccess,
	})
	if err != nil {
		return models.IssuedToken{}, err
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// CreateRefresh mints a long-lived refresh token and returns its jti.
// The jti ties the JWT to its refresh_sessions row but is never the lookup
// key: sessions are found by a digest of the raw token string.
func (m *TokenManager) CreateRefresh(userID int64) (models.IssuedToken, string, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	// 128-bit random session identifier, hex encoded
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return models.IssuedToken{}, "", fmt.Errorf("error while generating session id. Err: %w", err)
	}
	jti := hex.EncodeToString(b)

	value, err := m.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TypeRefresh,
	})
	if err != nil {
		return models.IssuedToken{}, "", err
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, jti, nil
}

// Parse verifies signature and expiry and requires the given token type.
// Expired tokens fail with apperrors.ErrTokenExpired, everything else that is
// wrong with the token fails with apperrors.ErrTokenInvalid.
func (m *TokenManager) Parse(raw string, wantType string) (Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("token error: %w", apperrors.ErrTokenExpired)
	case err != nil:
		return Claims{}, fmt.Errorf("token error (%v): %w", err, apperrors.ErrTokenInvalid)
	case claims.TokenType != wantType:
		return Claims{}, fmt.Errorf("unexpected token type %q: %w", claims.TokenType, apperrors.ErrTokenInvalid)
	}

	return *claims, nil
}

func (m *TokenManager) sign(claims Claims) (string, error) {
	value, err := jwt.NewWithClaims(m.alg, claims).SignedString([]byte(m.key))
	if err != nil {
		return "", fmt.Errorf("error while signing token. Err: %w", err)
	}
	return value, nil
}
