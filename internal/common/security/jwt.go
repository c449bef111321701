package security

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const BearerPrefix = "Bearer "

// Credential is what signup and login hand back to the client.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresIn string    `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenService issues and verifies HS256 bearer credentials.
// It holds no mutable state after construction.
type TokenService struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Issue(identity model.Identity) (Credential, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := jwt.MapClaims{
		"id":      identity.ID,
		"name":    identity.Name,
		"email":   identity.Email,
		"isAdmin": identity.IsAdmin,
		"iat":     issuedAt.Unix(),
		"exp":     expiresAt.Unix(),
		"jti":     uuid.NewString(),
	}
	_, tokenString, err := s.auth.Encode(claims)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to sign credential: %w", err)
	}
	return Credential{
		Token:     BearerPrefix + tokenString,
		ExpiresIn: FormatTTL(s.ttl),
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// Verify checks signature and expiry and returns the identity the credential
// claims. The caller must re-resolve it against storage before trusting it.
func (s *TokenService) Verify(tokenString string) (model.Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if len(tokenString) > len(BearerPrefix) && strings.EqualFold(tokenString[:len(BearerPrefix)], BearerPrefix) {
		tokenString = tokenString[len(BearerPrefix):]
	}
	if tokenString == "" {
		return model.Identity{}, fmt.Errorf("empty token: %w", common.ErrInvalidCredential)
	}

	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%s: %w", jwtauth.ErrorReason(err), common.ErrInvalidCredential)
	}
	return IdentityFromClaims(token.PrivateClaims())
}

// IdentityFromClaims decodes the identity claims of a verified token.
func IdentityFromClaims(claims jwt.MapClaims) (model.Identity, error) {
	id, err := int64Claim(claims, "id")
	if err != nil {
		return model.Identity{}, err
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	isAdmin, ok := claims["isAdmin"].(bool)
	if !ok {
		return model.Identity{}, fmt.Errorf("isAdmin claim is missing or not a bool: %w", common.ErrInvalidCredential)
	}
	return model.Identity{ID: id, Name: name, Email: email, IsAdmin: isAdmin}, nil
}

func int64Claim(claims jwt.MapClaims, key string) (int64, error) {
	switch v := claims[key].(type) {
	case float64:
		if v == float64(int64(v)) && v > 0 {
			return int64(v), nil
		}
	case int64:
		if v > 0 {
			return v, nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%s claim is missing or not a positive integer: %w", key, common.ErrInvalidCredential)
}

// FormatTTL renders whole days the way clients of the original API expect ("1d").
func FormatTTL(d time.Duration) string {
	const day = 24 * time.Hour
	if d > 0 && d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	return d.String()
}
