package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Roles carried in access tokens.
const (
	RoleUser          = "USER"
	RoleAdmin         = "ADMIN"
	RoleBoardingHouse = "BOARDING_HOUSE"
)

// ErrInvalidToken is returned by Parse for any token that fails signature,
// algorithm or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims binds an account id to its role.  The id refers to users.id,
// admins.id or boarding_houses.id depending on Role.
type Claims struct {
	ID   uint64 `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.  A zero TTL issues
// tokens without an exp claim; such tokens stay valid until the secret
// rotates.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
}

// NewTokenIssuer builds an issuer from the configured secret and TTL in
// minutes.
func NewTokenIssuer(secret string, ttlMin int) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), TTL: time.Duration(ttlMin) * time.Minute}
}

// Issue signs a token for the given account.
func (t *TokenIssuer) Issue(id uint64, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.TTL))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Parse verifies the signature (HMAC only) and returns the claims.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.Secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == 0 || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
