package hubspot

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Handler exposes the OAuth flow over plain net/http endpoints so callers
// can mount them on whatever router the surrounding service uses.
type Handler struct {
	client *Client
}

// NewHandler wraps a Client with HTTP endpoints.
func NewHandler(client *Client) Handler {
	return Handler{client: client}
}

// Authorize starts the OAuth flow and responds with the consent URL.
func (h Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	userID := r.FormValue("user_id")
	orgID := r.FormValue("org_id")
	if userID == "" || orgID == "" {
		http.Error(w, "user_id and org_id are required", http.StatusBadRequest)
		return
	}
	authURL, err := h.client.Authorize(r.Context(), userID, orgID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, authURL)
}

// OAuth2Callback completes the flow and serves a page that closes the
// consent popup shortly after loading.
func (h Handler) OAuth2Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.client.Callback(r.Context(), CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, closeWindowHTML)
}

// Credentials returns the stored token record exactly once.
func (h Handler) Credentials(w http.ResponseWriter, r *http.Request) {
	userID := r.FormValue("user_id")
	orgID := r.FormValue("org_id")
	if userID == "" || orgID == "" {
		http.Error(w, "user_id and org_id are required", http.StatusBadRequest)
		return
	}
	record, err := h.client.GetCredentials(r.Context(), userID, orgID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, record)
}

// Items loads and normalizes the caller's CRM objects.
func (h Handler) Items(w http.ResponseWriter, r *http.Request) {
	credentials := r.FormValue("credentials")
	if credentials == "" {
		http.Error(w, "credentials are required", http.StatusBadRequest)
		return
	}
	items, err := h.client.GetItems(r.Context(), []byte(credentials))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, items)
}

func (h Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.client.logger.Error("write response failed", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: caller and state
// errors are 400s, upstream failures pass the provider status through, and
// anything else is a 500.
func (h Handler) writeError(w http.ResponseWriter, err error) {
	var provider *ProviderError
	var upstream *UpstreamError
	switch {
	case errors.As(err, &provider):
		http.Error(w, provider.Error(), http.StatusBadRequest)
	case errors.As(err, &upstream):
		http.Error(w, upstream.Error(), upstream.Status)
	case errors.Is(err, ErrCodeMissing),
		errors.Is(err, ErrStateMissing),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrStateNotFound),
		errors.Is(err, ErrStateMismatch),
		errors.Is(err, ErrCredentialsNotFound),
		errors.Is(err, ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.client.logger.Error("request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const closeWindowHTML = `<html>
  <head>
    <title>Authorization Successful</title>
  </head>
  <body>
    <p>HubSpot connected successfully. You can close this window now.</p>
    <script>
      setTimeout(function() { window.close(); }, 2000);
    </script>
  </body>
</html>
`
