package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "authenticated", "celflicks")

	tok, err := a.GenerateToken("user-1", "sam@celflicks.test", true, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := a.ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID() != "user-1" || !claims.IsAdmin() || claims.Email != "sam@celflicks.test" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "authenticated", "celflicks")

	expired, _ := a.GenerateToken("u", "", false, -time.Minute)
	otherKey, _ := NewJWTAuthenticator("other", "authenticated", "celflicks").GenerateToken("u", "", false, time.Hour)
	otherIssuer, _ := NewJWTAuthenticator("secret", "authenticated", "someone-else").GenerateToken("u", "", false, time.Hour)
	noSubject, _ := a.GenerateToken("", "", false, time.Hour)

	tests := map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no subject":   noSubject,
		"garbage":      "not.a.token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := a.ValidateToken(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNonAdmin(t *testing.T) {
	a := NewJWTAuthenticator("secret", "", "")
	tok, _ := a.GenerateToken("u", "", false, time.Hour)
	claims, err := a.ValidateToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.IsAdmin() {
		t.Error("regular user reported as admin")
	}
}
