package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotAdmin     = errors.New("auth: email is not an admin")
	ErrMissingEmail = errors.New("auth: token has no email claim")
)

// Claims is the subset of a Supabase access token the API reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HS256 tokens issued by the hosted auth service.
type JWTAuthenticator struct {
	secret string
	aud    string
	admins map[string]struct{}
}

func NewJWTAuthenticator(secret, aud string, adminEmails []string) *JWTAuthenticator {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &JWTAuthenticator{secret: secret, aud: aud, admins: admins}
}

func (a *JWTAuthenticator) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	}
	if a.aud != "" {
		opts = append(opts, jwt.WithAudience(a.aud))
	}
	return opts
}

func (a *JWTAuthenticator) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	if a.secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return []byte(a.secret), nil
}

// ValidateAccessToken validates the access token
func (a *JWTAuthenticator) ValidateAccessToken(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &Claims{}, a.keyFunc, a.parserOptions()...)
}

func (a *JWTAuthenticator) Admin(token string) (*Claims, error) {
	t, err := a.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("auth: invalid token claims")
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}
	if _, ok := a.admins[strings.ToLower(claims.Email)]; !ok {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
