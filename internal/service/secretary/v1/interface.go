// Package secretary provides methods for credential hashing and token handling.
package secretary

// Secretary defines a set of methods for types implementing Secretary.
type Secretary interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
	NewToken() (string, string, error)
	GetTokenForUser(userID string) (string, error)
	ValidateToken(accessToken string) (string, error)
}
