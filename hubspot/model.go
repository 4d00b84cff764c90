package hubspot

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenRecord is the provider's token response augmented with an absolute
// expiry so consumers need not track issuance time.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"` // unix seconds
}

func tokenRecordFromOAuth(t *oauth2.Token) TokenRecord {
	rec := TokenRecord{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
	}
	if !t.Expiry.IsZero() {
		rec.ExpiresAt = t.Expiry.Unix()
	} else if t.ExpiresIn > 0 {
		rec.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second).Unix()
	}
	return rec
}
