package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestIssueAndVerifyTableToken(t *testing.T) {
	tok, err := IssueTableToken(testSecret, "abc123", time.Hour)
	if err != nil {
		t.Fatalf("IssueTableToken: %v", err)
	}

	if err := VerifyTableToken(testSecret, tok, "abc123"); err != nil {
		t.Fatalf("VerifyTableToken: %v", err)
	}

	claims, err := ParseTableToken(testSecret, tok)
	if err != nil {
		t.Fatalf("ParseTableToken: %v", err)
	}
	if claims.TableToken != "abc123" || claims.Role != RolePlayer {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyTableTokenRejects(t *testing.T) {
	good, _ := IssueTableToken(testSecret, "abc123", time.Hour)
	expired, _ := IssueTableToken(testSecret, "abc123", -time.Minute)

	tests := []struct {
		name   string
		secret string
		raw    string
		table  string
		want   error
	}{
		{"other table", testSecret, good, "zzz", ErrTokenMismatch},
		{"wrong secret", "other", good, "abc123", ErrInvalidToken},
		{"expired", testSecret, expired, "abc123", ErrInvalidToken},
		{"garbage", testSecret, "not-a-jwt", "abc123", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyTableToken(tt.secret, tt.raw, tt.table); !errors.Is(err, tt.want) {
				t.Errorf("VerifyTableToken err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIssueTableTokenEmptySecret(t *testing.T) {
	if _, err := IssueTableToken("", "abc", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("Bearer xyz"); got != "xyz" {
		t.Errorf("BearerToken = %q", got)
	}
	if got := BearerToken("Basic xyz"); got != "" {
		t.Errorf("BearerToken(Basic) = %q, want empty", got)
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(16)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateToken(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 32 || len(b) != 32 {
		t.Errorf("token lengths %d and %d, want 32", len(a), len(b))
	}
	if a == b {
		t.Error("two tokens are equal")
	}
}
