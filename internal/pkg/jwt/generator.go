// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Generator signs session tokens for signed-in operators.
type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string
	TTL      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		TTL:      ttl,
	}
}

// GenerateAccessToken signs an RS256 session token for uid and returns it with its jti.
// An empty role is issued as the user role.
func (g *Generator) GenerateAccessToken(uid, role, device string) (string, string, error) {
	if g.priv == nil {
		return "", "", errors.New("session signer has no private key")
	}
	if uid == "" {
		return "", "", ErrMissingUID
	}
	if role == "" {
		role = RoleUser
	}
	if err := checkRole(role); err != nil {
		return "", "", fmt.Errorf("%w: %q", err, role)
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		UID:     uid,
		Role:    role,
		Device:  device,
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   uid,
			Audience:  jwt.ClaimStrings{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(g.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token for %s: %w", uid, err)
	}
	return signed, jti, nil
}
