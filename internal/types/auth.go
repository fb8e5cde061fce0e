package types

import "github.com/golang-jwt/jwt/v5"

// Claims carried inside access tokens. Subject duplicates UserID in the
// registered claims so standard tooling can read it too.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
