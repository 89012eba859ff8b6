package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// Claims follows the hosted auth service's access-token layout: the user id
// in sub, and the admin flag under app_metadata.
type Claims struct {
	Email       string      `json:"email,omitempty"`
	Role        string      `json:"role,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

func (c *Claims) UserID() string { return c.Subject }

func (c *Claims) IsAdmin() bool { return c.AppMetadata.Role == RoleAdmin }

type Authenticator interface {
	GenerateToken(userID, email string, admin bool, ttl time.Duration) (string, error)
	ValidateToken(token string) (*Claims, error)
}
