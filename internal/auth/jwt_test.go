package auth

import (
	"strings"
	"testing"
	"time"
)

// newTestSigner uses a fixed secret so tests are deterministic.
func newTestSigner(t *testing.T) *CookieSigner {
	t.Helper()
	s, err := NewCookieSigner("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewCookieSigner: %v", err)
	}
	return s
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewCookieSigner_ShortSecret(t *testing.T) {
	if _, err := NewCookieSigner("short", time.Hour); err == nil {
		t.Fatal("NewCookieSigner() should reject secrets shorter than 16 chars")
	}
}

func TestNewCookieSigner_NonPositiveTTL(t *testing.T) {
	if _, err := NewCookieSigner("this-is-16-chars", 0); err == nil {
		t.Fatal("NewCookieSigner() should reject a zero lifetime")
	}
}

// =========================================================================
// GENERATE / VALIDATE
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.Generate("sess-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if n := strings.Count(token, "."); n != 2 {
		t.Errorf("Generate() token has %d dots, want 2", n)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.Generate("sess-abc")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "sess-abc" {
		t.Errorf("Validate() = %q, want %q", got, "sess-abc")
	}
}

func TestValidate_Expired(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.GenerateWithDuration("sess-123", -time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}
	if _, err := s.Validate(token); err == nil {
		t.Fatal("Validate() should reject an expired cookie")
	}
}

func TestValidate_Tampered(t *testing.T) {
	s := newTestSigner(t)

	token, _ := s.Generate("sess-123")
	tampered := token[:len(token)-3] + "xxx"

	if _, err := s.Validate(tampered); err == nil {
		t.Fatal("Validate() should reject a tampered cookie")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	s1, _ := NewCookieSigner("correct-secret-32-chars-long!!!!", time.Hour)
	s2, _ := NewCookieSigner("wrong-secret-32-chars-long!!!!!!", time.Hour)

	token, _ := s1.Generate("sess-123")
	if _, err := s2.Validate(token); err == nil {
		t.Fatal("Validate() should fail with a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	s := newTestSigner(t)

	for _, in := range []string{"", "not.a.jwt.token", "abc"} {
		if _, err := s.Validate(in); err == nil {
			t.Errorf("Validate(%q) should fail", in)
		}
	}
}
