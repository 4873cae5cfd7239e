package helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails signature or
// structural validation.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and decodes the signed bearer tokens used for
// authentication. Tokens are HS256-signed and carry only the registered
// claims: sub (stringified user id) and exp.
type JWTManager struct {
	Secret    []byte
	AccessTTL time.Duration
}

var defaultManager *JWTManager

func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	m := &JWTManager{Secret: []byte(secret), AccessTTL: accessTTL}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

// GenerateToken signs a token for the given user id expiring AccessTTL from now.
func (m *JWTManager) GenerateToken(userID int64) (string, time.Time, error) {
	exp := time.Now().Add(m.AccessTTL)
	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// ParseToken verifies the signature and structure of a token and returns its
// claims. Expiry presence is enforced by the caller: a token without exp
// parses fine here but must not pass authentication.
func (m *JWTManager) ParseToken(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserIDFromClaims parses the sub claim as the numeric user id.
func UserIDFromClaims(claims *jwt.RegisteredClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
