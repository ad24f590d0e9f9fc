package ingest

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/etros/scorebook/internal/boxscore"
)

// previewTokenTTL bounds how long a preview stays confirmable. A stale
// token forces a fresh upload rather than committing old parse state.
const previewTokenTTL = 24 * time.Hour

type previewClaims struct {
	jwt.RegisteredClaims
	FileName string            `json:"file_name"`
	Document boxscore.Document `json:"document"`
}

// TokenCodec issues and verifies preview tokens. The token is a signed
// HS256 JWT embedding the full parsed document, so confirm needs no
// server-side preview state and no re-parse.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec creates a codec signing with the given secret.
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{secret: secret, now: time.Now}
}

// Encode wraps a parsed document in a signed, time-bounded token.
func (c *TokenCodec) Encode(doc *boxscore.Document, fileName string) (string, error) {
	now := c.now()
	claims := previewClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "scorebook",
			Subject:   "boxscore-preview",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(previewTokenTTL)),
		},
		FileName: fileName,
		Document: *doc,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", &TokenError{Reason: "signing failed", Err: err}
	}

	return signed, nil
}

// Decode verifies a token and returns the document it carries. Any
// tamper, expiry, or malformed input is a TokenError; the document is
// reproduced exactly as encoded.
func (c *TokenCodec) Decode(token string) (*boxscore.Document, string, error) {
	claims := &previewClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, "", &TokenError{Reason: "expired", Err: err}
	case err != nil:
		return nil, "", &TokenError{Reason: "rejected", Err: err}
	case !parsed.Valid:
		return nil, "", &TokenError{Reason: "rejected"}
	}

	doc := claims.Document
	return &doc, claims.FileName, nil
}
