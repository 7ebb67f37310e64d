package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(email string, ttl time.Duration) Claims {
	return Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3f1c",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestAdmin_AllowsListedEmail(t *testing.T) {
	a := NewJWTAuthenticator(testSecret, "authenticated", []string{" Owner@Example.com "})

	c, err := a.Admin(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("owner@example.com", time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", c.Email)
}

func TestAdmin_Rejects(t *testing.T) {
	a := NewJWTAuthenticator(testSecret, "authenticated", []string{"owner@example.com"})

	cases := map[string]string{
		"not admin":    sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("visitor@example.com", time.Hour)),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("owner@example.com", -time.Minute)),
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), claimsFor("owner@example.com", time.Hour)),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(testSecret), claimsFor("owner@example.com", time.Hour)),
		"no email":     sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("", time.Hour)),
		"garbage":      "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Admin(token)
			assert.Error(t, err)
		})
	}
}

func TestAdmin_WrongAudience(t *testing.T) {
	a := NewJWTAuthenticator(testSecret, "authenticated", []string{"owner@example.com"})
	c := claimsFor("owner@example.com", time.Hour)
	c.Audience = jwt.ClaimStrings{"anon"}

	_, err := a.Admin(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	assert.Error(t, err)
}

func TestAdmin_NoSecretNeverAccepts(t *testing.T) {
	a := NewJWTAuthenticator("", "", []string{"owner@example.com"})

	_, err := a.Admin(sign(t, jwt.SigningMethodHS256, []byte("x"), claimsFor("owner@example.com", time.Hour)))
	assert.Error(t, err)
}
