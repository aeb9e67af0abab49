package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/kostumi/internal/model"
)

var keeper = &model.User{ID: 3, Username: "keeper", Role: model.RoleManager}

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("test-secret", keeper)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 3 || claims.Username != "keeper" || claims.Role != model.RoleManager {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Issuer != Issuer || claims.ID == "" {
		t.Errorf("expected issuer and token id, got %q %q", claims.Issuer, claims.ID)
	}

	diff := time.Until(claims.ExpiresAt.Time) - TokenExpiry
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	a, _ := IssueToken("s", keeper)
	b, _ := IssueToken("s", keeper)
	ca, _ := ParseToken("s", a)
	cb, _ := ParseToken("s", b)
	if ca.ID == cb.ID {
		t.Errorf("two tokens share id %s", ca.ID)
	}
}

func TestParseTokenRejects(t *testing.T) {
	valid, _ := IssueToken("secret1", keeper)

	sign := func(method jwt.SigningMethod, key any, claims Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		return s
	}
	base := func() Claims {
		return Claims{UserID: 3, RegisteredClaims: jwt.RegisteredClaims{
			ID: "abc", Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
	}

	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	foreign := base()
	foreign.Issuer = "someone-else"
	noExpiry := base()
	noExpiry.ExpiresAt = nil
	noID := base()
	noID.ID = ""

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", valid},
		{"garbage", "not-a-token"},
		{"expired", sign(jwt.SigningMethodHS256, []byte("secret2"), expired)},
		{"other issuer", sign(jwt.SigningMethodHS256, []byte("secret2"), foreign)},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte("secret2"), noExpiry)},
		{"no id", sign(jwt.SigningMethodHS256, []byte("secret2"), noID)},
		{"other algorithm", sign(jwt.SigningMethodHS512, []byte("secret2"), base())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken("secret2", tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := ParseToken("secret2", sign(jwt.SigningMethodHS256, []byte("secret2"), base())); err != nil {
		t.Errorf("control token rejected: %v", err)
	}
}
