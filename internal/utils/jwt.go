package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, keyFunc)
}

var (
	ErrMissingToken  = errors.New("missing or malformed Authorization header")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// VerifyRequestToken fetches the bearer token from the Authorization header or
// the "token" query parameter (WebSocket clients cannot always set headers),
// validates it, and returns the claims.
func VerifyRequestToken(r *http.Request, secret string) (jwt.MapClaims, error) {
	tokenStr := ""
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		tokenStr = strings.TrimPrefix(authz, "Bearer ")
	} else if q := r.URL.Query().Get("token"); q != "" {
		tokenStr = q
	}
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	return VerifyToken(tokenStr, secret)
}

// VerifyToken validates a JWT string and returns the claims if valid.
func VerifyToken(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// GetUserIDFromClaims extracts the "sub" (user ID) from claims safely as a string.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"]
	if !ok {
		return "", errors.New("missing sub claim")
	}

	switch v := sub.(type) {
	case string:
		return v, nil
	case float64:
		// JWT numbers get decoded as float64
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return "", errors.New("invalid sub claim type")
	}
}

// GetRoleFromClaims extracts the "role" claim, empty when absent.
func GetRoleFromClaims(claims jwt.MapClaims) string {
	if role, ok := claims["role"].(string); ok {
		return role
	}
	return ""
}
