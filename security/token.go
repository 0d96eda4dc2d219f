package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrWrongType    = errors.New("wrong token type")
)

// TokenIssuer signs and validates the access/refresh pair handed out
// at login. Both tokens are HS256 and carry the user ID as subject
type TokenIssuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Secret:     []byte(secret),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// Issue returns a fresh access/refresh pair bound to userID
func (t *TokenIssuer) Issue(userID string) (*TokenPair, error) {
	access, err := t.sign(userID, "access", t.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token, %w", err)
	}

	refresh, err := t.sign(userID, "refresh", t.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token, %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (t *TokenIssuer) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"type": typ,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})

	return tok.SignedString(t.Secret)
}

// Validate parses an access token and returns the user ID it asserts
func (t *TokenIssuer) Validate(tokenStr string) (string, error) {
	return t.validate(tokenStr, "access")
}

// ValidateRefresh parses a refresh token and returns the user ID it asserts
func (t *TokenIssuer) ValidateRefresh(tokenStr string) (string, error) {
	return t.validate(tokenStr, "refresh")
}

func (t *TokenIssuer) validate(tokenStr, typ string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return t.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", ErrTokenInvalid
	}

	if gotTyp, _ := claims["type"].(string); gotTyp != typ {
		return "", ErrWrongType
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}

	return userID, nil
}
