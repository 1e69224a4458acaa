package domain

import "time"

// TokenClaims are the validated claims of an API bearer token.
type TokenClaims struct {
	ID        string
	Subject   string
	Issuer    string
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasScope reports whether the token grants scope. A token without scopes
// grants everything.
func (c *TokenClaims) HasScope(scope string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range c.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}
