package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhiya492/integrations-technical-assessment/store"
)

func newTestClient(t *testing.T, cfg Config, st store.Store, httpClient *http.Client) *Client {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg, st, httpClient, logger)
}

func testConfig() Config {
	return Config{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "http://localhost:8000/integrations/hubspot/oauth2callback",
	}
}

// newTokenServer returns a token endpoint that validates the exchange form
// and hands back a fixed token response.
func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse exchange form: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q, want authorization_code", got)
		}
		if got := r.Form.Get("client_id"); got != "client-1" {
			t.Errorf("client_id = %q, want client-1", got)
		}
		if got := r.Form.Get("client_secret"); got != "secret-1" {
			t.Errorf("client_secret = %q, want secret-1", got)
		}
		if got := r.Form.Get("code"); got != "auth-code" {
			t.Errorf("code = %q, want auth-code", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-123","refresh_token":"ref-456","token_type":"bearer","expires_in":3600}`)
	}))
}

func TestAuthorize(t *testing.T) {
	mem := store.NewMemoryStore()
	c := newTestClient(t, testConfig(), mem, nil)
	userID := uuid.NewString()
	orgID := uuid.NewString()

	authURL, err := c.Authorize(context.Background(), userID, orgID)
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth URL: %v", err)
	}
	q := u.Query()
	if got := q.Get("client_id"); got != "client-1" {
		t.Errorf("client_id = %q, want client-1", got)
	}
	if got := q.Get("redirect_uri"); got != testConfig().RedirectURI {
		t.Errorf("redirect_uri = %q, want %q", got, testConfig().RedirectURI)
	}
	if got := q.Get("scope"); got != strings.Join(DefaultScopes, " ") {
		t.Errorf("scope = %q, want space-joined default scopes", got)
	}

	decoded, err := decodeState(q.Get("state"))
	if err != nil {
		t.Fatalf("decodeState error: %v", err)
	}
	if decoded.UserID != userID || decoded.OrgID != orgID {
		t.Errorf("state identity = (%q, %q), want (%q, %q)",
			decoded.UserID, decoded.OrgID, userID, orgID)
	}

	raw, err := mem.Get(context.Background(), stateKey(orgID, userID))
	if err != nil {
		t.Fatalf("stored state missing: %v", err)
	}
	var saved stateToken
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode stored state: %v", err)
	}
	if saved.Nonce != decoded.Nonce {
		t.Errorf("stored nonce %q != URL nonce %q", saved.Nonce, decoded.Nonce)
	}
}

func TestAuthorize_StateTTL(t *testing.T) {
	var gotTTL time.Duration
	ms := &store.MockStore{
		SetFunc: func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
			gotTTL = ttl
			return nil
		},
	}
	c := newTestClient(t, testConfig(), ms, nil)
	if _, err := c.Authorize(context.Background(), "u1", "o1"); err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	if gotTTL != 600*time.Second {
		t.Errorf("state TTL = %v, want 600s", gotTTL)
	}
}

func TestAuthorize_StoreFailure(t *testing.T) {
	ms := &store.MockStore{
		SetFunc: func(ctx context.Context, key string, value []byte, ttl time.Duration) error {
			return errors.New("connection refused")
		},
	}
	c := newTestClient(t, testConfig(), ms, nil)
	if _, err := c.Authorize(context.Background(), "u1", "o1"); err == nil {
		t.Fatal("Authorize should fail when the store write fails")
	}
}

func TestCallback_Gates(t *testing.T) {
	mem := store.NewMemoryStore()
	c := newTestClient(t, testConfig(), mem, nil)
	ctx := context.Background()

	// provider-reported error wins over everything else
	err := c.Callback(ctx, CallbackParams{Error: "access_denied", ErrorDescription: "user said no"})
	var provider *ProviderError
	if !errors.As(err, &provider) {
		t.Errorf("provider error: got %v, want *ProviderError", err)
	} else if !strings.Contains(provider.Error(), "user said no") {
		t.Errorf("provider error message = %q, want the provider description", provider.Error())
	}

	if err := c.Callback(ctx, CallbackParams{State: "whatever"}); !errors.Is(err, ErrCodeMissing) {
		t.Errorf("missing code: got %v, want ErrCodeMissing", err)
	}
	if err := c.Callback(ctx, CallbackParams{Code: "auth-code"}); !errors.Is(err, ErrStateMissing) {
		t.Errorf("missing state: got %v, want ErrStateMissing", err)
	}
	if err := c.Callback(ctx, CallbackParams{Code: "auth-code", State: "!!garbage!!"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("undecodable state: got %v, want ErrInvalidState", err)
	}

	// decodable state with no stored counterpart
	raw, _ := json.Marshal(stateToken{Nonce: "n-1", UserID: "u1", OrgID: "o1"})
	err = c.Callback(ctx, CallbackParams{Code: "auth-code", State: encodeState(raw)})
	if !errors.Is(err, ErrStateNotFound) {
		t.Errorf("unknown state: got %v, want ErrStateNotFound", err)
	}

	// stored state exists but the nonce differs
	stored, _ := json.Marshal(stateToken{Nonce: "other-nonce", UserID: "u1", OrgID: "o1"})
	if err := mem.Set(ctx, stateKey("o1", "u1"), stored, time.Minute); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	err = c.Callback(ctx, CallbackParams{Code: "auth-code", State: encodeState(raw)})
	if !errors.Is(err, ErrStateMismatch) {
		t.Errorf("nonce mismatch: got %v, want ErrStateMismatch", err)
	}

	// none of the rejected callbacks may have written a token record
	if _, err := mem.Get(ctx, credentialsKey("o1", "u1")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("token record written after rejected callback: %v", err)
	}
}

func TestCallback_Success(t *testing.T) {
	ts := newTokenServer(t)
	defer ts.Close()

	cfg := testConfig()
	cfg.TokenURL = ts.URL
	mem := store.NewMemoryStore()
	c := newTestClient(t, cfg, mem, nil)
	ctx := context.Background()

	authURL, err := c.Authorize(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	u, _ := url.Parse(authURL)
	state := u.Query().Get("state")

	before := time.Now()
	if err := c.Callback(ctx, CallbackParams{Code: "auth-code", State: state}); err != nil {
		t.Fatalf("Callback error: %v", err)
	}

	raw, err := mem.Get(ctx, credentialsKey("o1", "u1"))
	if err != nil {
		t.Fatalf("token record not stored: %v", err)
	}
	var rec TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode token record: %v", err)
	}
	if rec.AccessToken != "tok-123" {
		t.Errorf("access_token = %q, want tok-123", rec.AccessToken)
	}
	if rec.RefreshToken != "ref-456" {
		t.Errorf("refresh_token = %q, want ref-456", rec.RefreshToken)
	}
	if rec.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", rec.ExpiresIn)
	}
	want := before.Add(time.Hour).Unix()
	if diff := rec.ExpiresAt - want; diff < -2 || diff > 2 {
		t.Errorf("expires_at = %d, want ≈ %d", rec.ExpiresAt, want)
	}

	if _, err := mem.Get(ctx, stateKey("o1", "u1")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("state entry not cleaned up: %v", err)
	}
}

func TestCallback_ExchangeFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"code already used"}`)
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.TokenURL = ts.URL
	mem := store.NewMemoryStore()
	c := newTestClient(t, cfg, mem, nil)
	ctx := context.Background()

	authURL, err := c.Authorize(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("Authorize error: %v", err)
	}
	u, _ := url.Parse(authURL)
	state := u.Query().Get("state")

	err = c.Callback(ctx, CallbackParams{Code: "auth-code", State: state})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Callback error = %v, want *UpstreamError", err)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Errorf("upstream status = %d, want 400", upstream.Status)
	}
	if !strings.Contains(upstream.Body, "code already used") {
		t.Errorf("upstream body = %q, want provider detail", upstream.Body)
	}

	// state is consumed regardless of the exchange outcome
	if _, err := mem.Get(ctx, stateKey("o1", "u1")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("state entry not cleaned up after failed exchange: %v", err)
	}
	if _, err := mem.Get(ctx, credentialsKey("o1", "u1")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("token record written after failed exchange: %v", err)
	}
}

func TestGetCredentials_ConsumeOnce(t *testing.T) {
	mem := store.NewMemoryStore()
	c := newTestClient(t, testConfig(), mem, nil)
	ctx := context.Background()

	raw, _ := json.Marshal(TokenRecord{AccessToken: "tok-123", ExpiresIn: 3600})
	if err := mem.Set(ctx, credentialsKey("o1", "u1"), raw, time.Hour); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}

	rec, err := c.GetCredentials(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("GetCredentials error: %v", err)
	}
	if rec.AccessToken != "tok-123" {
		t.Errorf("access_token = %q, want tok-123", rec.AccessToken)
	}

	if _, err := c.GetCredentials(ctx, "u1", "o1"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("second GetCredentials = %v, want ErrCredentialsNotFound", err)
	}
}

func TestGetCredentials_StoreFailure(t *testing.T) {
	ms := &store.MockStore{
		TakeFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("connection refused")
		},
	}
	c := newTestClient(t, testConfig(), ms, nil)

	_, err := c.GetCredentials(context.Background(), "u1", "o1")
	if err == nil || errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("GetCredentials = %v, want an infrastructure error", err)
	}
}
