package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/abhiya492/integrations-technical-assessment/store"
)

const (
	stateTTL        = 10 * time.Minute
	defaultTokenTTL = time.Hour
)

// Client implements the HubSpot OAuth authorization-code flow and CRM object
// retrieval against an injected ephemeral store.
type Client struct {
	cfg    Config
	store  store.Store
	http   *http.Client
	oauth  *oauth2.Config
	logger *slog.Logger
}

// NewClient constructs a Client. A nil httpClient falls back to
// http.DefaultClient and a nil logger to slog.Default; callers wanting
// request timeouts should pass a client that enforces them.
func NewClient(cfg Config, st store.Store, httpClient *http.Client, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:   cfg,
		store: st,
		http:  httpClient,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logger: logger,
	}
}

func stateKey(orgID, userID string) string {
	return fmt.Sprintf("hubspot_state:%s:%s", orgID, userID)
}

func credentialsKey(orgID, userID string) string {
	return fmt.Sprintf("hubspot_credentials:%s:%s", orgID, userID)
}

// Authorize prepares a consent URL for the given caller and stores the
// matching state token for later callback validation. The stored entry
// expires on its own if the flow is abandoned.
func (c *Client) Authorize(ctx context.Context, userID, orgID string) (string, error) {
	nonce, err := newNonce()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(stateToken{Nonce: nonce, UserID: userID, OrgID: orgID})
	if err != nil {
		return "", fmt.Errorf("hubspot: marshal state: %w", err)
	}
	if err := c.store.Set(ctx, stateKey(orgID, userID), raw, stateTTL); err != nil {
		return "", fmt.Errorf("hubspot: persist state: %w", err)
	}
	return c.oauth.AuthCodeURL(encodeState(raw)), nil
}

// CallbackParams carries the query parameters HubSpot appends to the
// redirect URI.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Callback validates the returned state, exchanges the authorization code
// for a token, and stores the resulting record keyed by the caller identity
// embedded in the state. The stored state entry is deleted no matter how the
// exchange turns out.
func (c *Client) Callback(ctx context.Context, p CallbackParams) error {
	if p.Error != "" {
		return &ProviderError{Code: p.Error, Description: p.ErrorDescription}
	}
	if p.Code == "" {
		return ErrCodeMissing
	}
	if p.State == "" {
		return ErrStateMissing
	}
	tok, err := decodeState(p.State)
	if err != nil {
		return err
	}

	saved, err := c.store.Get(ctx, stateKey(tok.OrgID, tok.UserID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrStateNotFound
		}
		return fmt.Errorf("hubspot: load state: %w", err)
	}
	var savedTok stateToken
	if err := json.Unmarshal(saved, &savedTok); err != nil {
		return fmt.Errorf("hubspot: decode saved state: %w", err)
	}
	if tok.Nonce != savedTok.Nonce {
		return ErrStateMismatch
	}

	// The exchange and the state cleanup run together; both must finish
	// before the outcome is decided. Cleanup failure is logged only — the
	// entry expires via its TTL anyway.
	cleanup := make(chan error, 1)
	go func() {
		cleanup <- c.store.Delete(ctx, stateKey(tok.OrgID, tok.UserID))
	}()
	// oauth2 picks its transport up from the context
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	exchanged, exchangeErr := c.oauth.Exchange(exchangeCtx, p.Code)
	if err := <-cleanup; err != nil {
		c.logger.Warn("state cleanup failed",
			"org_id", tok.OrgID, "user_id", tok.UserID, "error", err)
	}
	if exchangeErr != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(exchangeErr, &retrieveErr) {
			return &UpstreamError{
				Status: retrieveErr.Response.StatusCode,
				Body:   strings.TrimSpace(string(retrieveErr.Body)),
			}
		}
		return fmt.Errorf("hubspot: token exchange failed: %w", exchangeErr)
	}

	record := tokenRecordFromOAuth(exchanged)
	ttl := defaultTokenTTL
	if record.ExpiresIn > 0 {
		ttl = time.Duration(record.ExpiresIn) * time.Second
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("hubspot: marshal token record: %w", err)
	}
	if err := c.store.Set(ctx, credentialsKey(tok.OrgID, tok.UserID), raw, ttl); err != nil {
		return fmt.Errorf("hubspot: persist credentials: %w", err)
	}
	return nil
}

// GetCredentials returns the stored token record for the caller and removes
// it from the store in the same operation. A repeated call fails with
// ErrCredentialsNotFound.
func (c *Client) GetCredentials(ctx context.Context, userID, orgID string) (*TokenRecord, error) {
	raw, err := c.store.Take(ctx, credentialsKey(orgID, userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("hubspot: load credentials: %w", err)
	}
	var rec TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("hubspot: decode credentials: %w", err)
	}
	return &rec, nil
}
