package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestNewAccessTokenAndParse(t *testing.T) {
	token, err := NewAccessToken(42, "bcict22153@ttu.edu.gh", "STUDENT", "courses:read registrations:write", testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("NewAccessToken() returned empty token")
	}

	claims, err := Parse(token, testSecret)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Sub != 42 {
		t.Errorf("Sub = %d, want 42", claims.Sub)
	}
	if claims.Email != "bcict22153@ttu.edu.gh" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != "STUDENT" {
		t.Errorf("Role = %q, want STUDENT", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken(1, "a@ttu.edu.gh", "STUDENT", "", testSecret, time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	if _, err := Parse(token, "other-secret"); err == nil {
		t.Error("Parse() accepted token signed with different secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewAccessToken(1, "a@ttu.edu.gh", "STUDENT", "", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	if _, err := Parse(token, testSecret); err == nil {
		t.Error("Parse() accepted expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-token", testSecret); err == nil {
		t.Error("Parse() accepted malformed token")
	}
}
