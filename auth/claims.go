package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claims structure used by the whiteboard service.
// It embeds jwt.RegisteredClaims for standard fields (exp, iat, etc.) and
// adds the user identity the realtime and document layers key on.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
