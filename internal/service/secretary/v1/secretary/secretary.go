// Package secretary provides methods for credential hashing and token handling.
package secretary

import (
	"errors"
	"fmt"
	"time"

	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/models/modelclaims"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is the absolute token lifetime, no refresh mechanism exists.
const tokenTTL = 7 * 24 * time.Hour

// Secretary defines object structure and its attributes.
type Secretary struct {
	key []byte
}

// NewSecretaryService initializes a secretary service with hashing and token functionality.
func NewSecretaryService(c *config.SecretConfig) (*Secretary, error) {
	if c.SecretKey == "" {
		return nil, errors.New("empty secret key was passed to secretary initializer")
	}
	return &Secretary{
		key: []byte(c.SecretKey),
	}, nil
}

// HashPassword derives a one-way bcrypt hash from a password.
func (s *Secretary) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against a previously derived hash.
func (s *Secretary) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewToken generates a new userID and a corresponding signed token.
func (s *Secretary) NewToken() (string, string, error) {
	userID := uuid.New().String()
	accessToken, err := s.GetTokenForUser(userID)
	if err != nil {
		return "", "", err
	}
	return accessToken, userID, nil
}

// GetTokenForUser generates a signed token for a userID.
func (s *Secretary) GetTokenForUser(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &modelclaims.MyCustomClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	})
	return token.SignedString(s.key)
}

// ValidateToken checks token signature and expiry and retrieves the userID.
func (s *Secretary) ValidateToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &modelclaims.MyCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	if claims, ok := token.Claims.(*modelclaims.MyCustomClaims); ok && token.Valid {
		return claims.UserID, nil
	}
	return "", errors.New("invalid access token")
}
