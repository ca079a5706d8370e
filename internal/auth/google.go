package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleAuth runs the Google OAuth2 login: it builds the consent URL and
// exchanges the callback code for the user's profile.
type GoogleAuth struct {
	oauthConfig *oauth2.Config
	UserInfoURL string
}

func NewGoogleAuth(cfg *config.Config) *GoogleAuth {
	return &GoogleAuth{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: GoogleUserInfoURL,
	}
}

// WithEndpoint points the login at another OAuth2 provider, used by tests
func (g *GoogleAuth) WithEndpoint(endpoint oauth2.Endpoint) *GoogleAuth {
	g.oauthConfig.Endpoint = endpoint
	return g
}

func NewState() string {
	return uuid.NewString()
}

func (g *GoogleAuth) AuthCodeURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and fetches the Google profile
func (g *GoogleAuth) Exchange(ctx context.Context, code string) (*services.GoogleProfile, error) {
	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange google code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch google profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch google profile: status %d: %s", resp.StatusCode, body)
	}

	var profile services.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode google profile: %w", err)
	}
	return &profile, nil
}
