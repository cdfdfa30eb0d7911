package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that cannot be trusted:
// bad signature, malformed structure, expired, wrong algorithm or missing user id.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by an access token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access tokens with a single HMAC secret.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	expiration time.Duration
	now        func() time.Time
}

// NewCodec creates a Codec. algorithm must name an HMAC method (HS256, HS384, HS512).
func NewCodec(secret, algorithm string, expiration time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if expiration <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive, got %s", expiration)
	}

	return &Codec{
		secret:     []byte(secret),
		method:     method,
		expiration: expiration,
		now:        time.Now,
	}, nil
}

// Issue signs a token for userID that expires after the configured duration.
func (c *Codec) Issue(userID uint) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiration)),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns its claims.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
