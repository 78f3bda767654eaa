package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidIdentity is returned when a correctly signed token carries an unexpected identity.
var ErrInvalidIdentity = errors.New("token identity is not accepted")

// LibraryIdentity is the only identity this service issues tokens for.
var LibraryIdentity = Identity{Project: "library"}

// Identity is embedded in every access token.
type Identity struct {
	Project string `json:"project"`
}

type Claims struct {
	Identity Identity `json:"identity"`
	Type     string   `json:"type"` // always "access"
	jwt.RegisteredClaims
}

func generateJTI() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateToken signs an HS256 access token for identity, valid for ttl.
func GenerateToken(secret string, identity Identity, ttl time.Duration) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}

	now := time.Now()
	c := Claims{
		Identity: identity,
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies signature, algorithm and expiry, and returns the claims.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*Claims); ok && t.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// VerifyLibraryToken parses tokenStr and checks it was issued for LibraryIdentity.
func VerifyLibraryToken(secret, tokenStr string) (*Claims, error) {
	claims, err := ParseToken(secret, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Identity != LibraryIdentity || claims.Type != "access" {
		return nil, ErrInvalidIdentity
	}
	return claims, nil
}
