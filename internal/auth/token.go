package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims are the JWT claims carried by both access and refresh tokens.
// Subject holds the user's public ID; Type distinguishes the two kinds so an
// access token can never be replayed against the refresh endpoint.
type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the access/refresh token pair.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess returns a signed short-lived access token for the user.
func (i *TokenIssuer) IssueAccess(userID uuid.UUID, now time.Time) (string, error) {
	return i.sign(tokenTypeAccess, userID, uuid.NewString(), now, i.accessTTL)
}

// IssueRefresh returns a signed refresh token and its jti. The jti is
// persisted so the token can be revoked server-side.
func (i *TokenIssuer) IssueRefresh(userID uuid.UUID, now time.Time) (token, jti string, err error) {
	jti = uuid.NewString()
	token, err = i.sign(tokenTypeRefresh, userID, jti, now, i.refreshTTL)
	return token, jti, err
}

func (i *TokenIssuer) sign(typ string, userID uuid.UUID, jti string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccess parses an access token and returns the user's public ID.
func (i *TokenIssuer) VerifyAccess(raw string) (uuid.UUID, error) {
	claims, err := i.verify(raw, tokenTypeAccess)
	if err != nil {
		return uuid.Nil, err
	}
	return parseSubject(claims)
}

// VerifyRefresh parses a refresh token and returns the user's public ID and
// the token's jti.
func (i *TokenIssuer) VerifyRefresh(raw string) (uuid.UUID, string, error) {
	claims, err := i.verify(raw, tokenTypeRefresh)
	if err != nil {
		return uuid.Nil, "", err
	}
	userID, err := parseSubject(claims)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, claims.ID, nil
}

func (i *TokenIssuer) verify(raw, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Type != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parseSubject(claims *Claims) (uuid.UUID, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
