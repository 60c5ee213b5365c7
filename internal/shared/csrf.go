package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CSRFManager issues and checks the hidden form token carried by every
// wizard POST. Tokens are HS256 JWTs bound to the session, so a token
// lifted from one session fails verification in another.
type CSRFManager struct {
	secret []byte
	ttl    time.Duration
}

// NewCSRFManager creates a manager. An empty secret gets an ephemeral
// random one, which is fine everywhere except multi-instance production.
func NewCSRFManager(secret string, ttl time.Duration) *CSRFManager {
	if secret == "" {
		b := make([]byte, 32)
		rand.Read(b)
		secret = hex.EncodeToString(b)
	}
	if ttl == 0 {
		ttl = time.Hour
	}
	return &CSRFManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a token for the given session.
func (m *CSRFManager) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify reports whether the token is valid for the given session.
func (m *CSRFManager) Verify(token, sessionID string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub != sessionID {
		return fmt.Errorf("token not issued for this session")
	}
	return nil
}
