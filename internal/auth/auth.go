package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	ValidateAccessToken(token string) (*jwt.Token, error)
	// Admin validates token and checks the email claim against the admin allowlist.
	Admin(token string) (*Claims, error)
}
