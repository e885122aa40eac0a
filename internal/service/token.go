package service

import (
	"crypto/rand"
	"encoding/base64"
)

// opaqueTokenBytes is the entropy behind a verification-link credential.
// 32 bytes keeps the token unguessable for its whole 24h lifetime.
const opaqueTokenBytes = 32

// NewOpaqueToken returns a URL-safe single-use credential for verification
// links. Distinct from session tokens: it carries no claims and is only
// meaningful as a database lookup key.
func NewOpaqueToken() string {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("service: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
