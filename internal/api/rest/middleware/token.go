// Package middleware provides various middleware functionality.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/boostup/smmpanel/internal/models/modeldto"
	"github.com/boostup/smmpanel/internal/service/secretary/v1"
)

// TokenHandler sets object structure.
type TokenHandler struct {
	sec secretary.Secretary
}

// NewTokenHandler initializes a new token handler.
func NewTokenHandler(sec secretary.Secretary) (*TokenHandler, error) {
	if sec == nil {
		return nil, errors.New("nil secretary object was found")
	}
	return &TokenHandler{
		sec: sec,
	}, nil
}

// TokenHandle rejects requests without a valid bearer token.
func (c *TokenHandler) TokenHandle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if len(tokenString) == 0 {
			rejectUnauthorized(w, "token authorization required")
			return
		}
		tokenString = strings.Replace(tokenString, "Bearer ", "", 1)
		_, err := c.sec.ValidateToken(tokenString)
		if err != nil {
			rejectUnauthorized(w, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rejectUnauthorized(w http.ResponseWriter, msg string) {
	resBody, _ := json.Marshal(modeldto.Message{Message: msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write(resBody)
}
