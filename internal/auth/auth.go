package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenMismatch = errors.New("token is for a different table")
)

// TableClaims grant the bearer the right to shoot on one table.
type TableClaims struct {
	TableToken string `json:"table_token"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

const RolePlayer = "player"

// IssueTableToken signs a player token for tableToken valid for ttl.
func IssueTableToken(secret, tableToken string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is empty")
	}
	now := time.Now()
	claims := TableClaims{
		TableToken: tableToken,
		Role:       RolePlayer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tableToken,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseTableToken validates signature and expiry and returns the claims.
func ParseTableToken(secret, raw string) (*TableClaims, error) {
	claims := &TableClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyTableToken checks that raw is a valid player token for tableToken.
func VerifyTableToken(secret, raw, tableToken string) error {
	claims, err := ParseTableToken(secret, raw)
	if err != nil {
		return err
	}
	if claims.TableToken != tableToken || claims.Role != RolePlayer {
		return ErrTokenMismatch
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GenerateToken returns n random bytes hex-encoded. Table tokens, instance IDs
// and socket client IDs all come from here.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
