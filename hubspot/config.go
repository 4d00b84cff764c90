package hubspot

// Config holds the registered HubSpot app credentials & provider endpoints.
// It is injected at construction; the package keeps no ambient globals.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	AuthURL    string // consent screen, defaults to the hosted HubSpot page
	TokenURL   string
	APIBaseURL string // REST API origin
	AppBaseURL string // web app origin used for item links

	// MaxRetries re-issues an object-list request after a transient failure
	// (5xx or transport error). Zero disables retries.
	MaxRetries int
}

const (
	defaultAuthURL    = "https://app.hubspot.com/oauth/authorize"
	defaultTokenURL   = "https://api.hubapi.com/oauth/v1/token"
	defaultAPIBaseURL = "https://api.hubapi.com"
	defaultAppBaseURL = "https://app.hubspot.com"
)

// DefaultScopes cover read access to the three CRM object types.
var DefaultScopes = []string{
	"crm.objects.contacts.read",
	"crm.objects.companies.read",
	"crm.objects.deals.read",
	"content",
}

func (c Config) withDefaults() Config {
	if c.AuthURL == "" {
		c.AuthURL = defaultAuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.AppBaseURL == "" {
		c.AppBaseURL = defaultAppBaseURL
	}
	if len(c.Scopes) == 0 {
		c.Scopes = DefaultScopes
	}
	return c
}
