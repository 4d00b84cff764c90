package hubspot

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// stateToken binds an authorization attempt to the caller identity. It is
// stored server-side for callback validation and travels base64url-encoded
// in the consent URL's state parameter.
type stateToken struct {
	Nonce  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// newNonce returns a single-use random string with 32 bytes of entropy.
func newNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("hubspot: failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func encodeState(raw []byte) string {
	return base64.URLEncoding.EncodeToString(raw)
}

// decodeState rejects anything that is not base64url-wrapped stateToken JSON.
func decodeState(s string) (stateToken, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return stateToken{}, ErrInvalidState
	}
	var t stateToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return stateToken{}, ErrInvalidState
	}
	return t, nil
}
