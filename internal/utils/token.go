package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand" // secure random number generation
    "encoding/hex" // hex encoding for opaque tokens
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AuthTokenTTL is the lifetime of an issued bearer token.  Tokens are
// stateless and self-verifying; there is no server-side revocation, so a
// disabled user keeps any already-issued token until it expires naturally.
const AuthTokenTTL = 6 * time.Hour

// ErrInvalidToken is returned by ParseAuthToken for tampered, malformed or
// expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenPayload is the identity payload embedded in a bearer token.  Name is
// only populated for social sign-ins, matching the original token shape.
type TokenPayload struct {
    UserID string
    Email  string
    Name   string
}

// NewAuthToken builds and signs an HS256 JWT carrying the identity payload
// under a "user" claim with the standard exp and iat claims.  The signing
// secret is process-wide configuration loaded once at startup; rotating it
// invalidates every outstanding token.
func NewAuthToken(secret string, p TokenPayload) (string, error) {
    now := time.Now().UTC()
    user := jwt.MapClaims{
        "id":    p.UserID,
        "email": p.Email,
    }
    if p.Name != "" {
        user["name"] = p.Name
    }
    claims := jwt.MapClaims{
        "user": user,
        "exp":  now.Add(AuthTokenTTL).Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// ParseAuthToken verifies signature and expiry and extracts the identity
// payload.  Any failure collapses to ErrInvalidToken; callers never need to
// distinguish a forged token from a stale one.
func ParseAuthToken(secret, raw string) (TokenPayload, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return TokenPayload{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return TokenPayload{}, ErrInvalidToken
    }
    user, ok := claims["user"].(map[string]interface{})
    if !ok {
        return TokenPayload{}, ErrInvalidToken
    }
    var p TokenPayload
    if v, ok := user["id"].(string); ok {
        p.UserID = v
    }
    if v, ok := user["email"].(string); ok {
        p.Email = v
    }
    if v, ok := user["name"].(string); ok {
        p.Name = v
    }
    if p.UserID == "" || p.Email == "" {
        return TokenPayload{}, ErrInvalidToken
    }
    return p, nil
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.  Verification and password reset
// tokens use 20 bytes (40 hex characters); the entropy never derives from
// timestamps or counters.
func RandomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
