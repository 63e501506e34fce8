package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenTTL is how long an access token stays valid.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken is returned by Verify for any signature, expiry or format failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by an access token.
type Claims struct {
	Subject  uint   `json:"sub"`
	Username string `json:"username"`
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
	Verify(token string) (*Claims, error)
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// JWTIssuer issues HS256 tokens with a fixed TTL.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer signing with secret.
func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &JWTIssuer{secret: []byte(secret), now: time.Now}, nil
}

// WithClock returns a copy of the issuer that reads the time from now.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	return &JWTIssuer{secret: i.secret, now: now}
}

func (i *JWTIssuer) Issue(claims Claims) (string, error) {
	issuedAt := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: claims.Username,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatUint(uint64(claims.Subject), 10),
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(TokenTTL).Unix(),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *JWTIssuer) Verify(tokenString string) (*Claims, error) {
	var parsed tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || parsed.ExpiresAt == 0 {
		return nil, ErrInvalidToken
	}

	subject, err := strconv.ParseUint(parsed.Subject, 10, 64)
	if err != nil || subject == 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &Claims{Subject: uint(subject), Username: parsed.Username}, nil
}
