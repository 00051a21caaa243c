package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/utils"
)

const managementTokenCacheKey = "idp:management_token"

// tokenResponse is the typed shape of the provider's token endpoint reply.
// Decoding fails closed: a reply without an access token is a provider error.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (t *tokenResponse) validate() error {
	if t.AccessToken == "" {
		return fmt.Errorf("%w: token response missing access_token", ErrProvider)
	}
	return nil
}

type roleEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createdUser struct {
	UserID string `json:"user_id"`
}

// Auth0Provider implements IdentityProvider against an Auth0-style OIDC
// management API. Management calls are authorized with a client-credentials
// token; end-user logins use the resource-owner password grant.
type Auth0Provider struct {
	baseURL      string
	clientID     string
	clientSecret string
	audience     string
	connection   string
	httpClient   *http.Client
}

// NewAuth0Provider creates a provider client from configuration.
func NewAuth0Provider(cfg *config.IdentityProviderConfig) *Auth0Provider {
	return &Auth0Provider{
		baseURL:      "https://" + cfg.Domain,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		audience:     cfg.Audience,
		connection:   cfg.Connection,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// IssueToken returns a machine-to-machine management token via the
// client-credentials grant. Tokens are cached in Redis until shortly before
// expiry so repeated management calls do not re-issue them.
func (p *Auth0Provider) IssueToken(ctx context.Context) (string, error) {
	if token, err := utils.CacheGet(managementTokenCacheKey); err == nil && token != "" {
		return token, nil
	}

	conf := &clientcredentials.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		TokenURL:     p.baseURL + "/oauth/token",
		EndpointParams: url.Values{
			"audience": {p.audience},
		},
	}

	token, err := conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: client credentials grant: %v", ErrProvider, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrProvider)
	}

	if ttl := time.Until(token.Expiry) - time.Minute; ttl > 0 {
		if err := utils.CacheSet(managementTokenCacheKey, token.AccessToken, ttl); err != nil {
			logrus.WithError(err).Debug("Management token not cached")
		}
	}

	return token.AccessToken, nil
}

// CreateAccount creates an account with a verified email and returns the
// provider-assigned user id.
func (p *Auth0Provider) CreateAccount(ctx context.Context, account Account) (string, error) {
	payload := map[string]interface{}{
		"connection":     p.connection,
		"email":          account.Email,
		"password":       account.Password,
		"email_verified": true,
		"given_name":     account.FirstName,
		"family_name":    account.LastName,
	}
	if len(account.Metadata) > 0 {
		payload["user_metadata"] = account.Metadata
	}

	body, err := p.managementCall(ctx, http.MethodPost, "/api/v2/users", payload)
	if err != nil {
		return "", err
	}

	var user createdUser
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("%w: decoding create account response: %v", ErrProvider, err)
	}
	if user.UserID == "" {
		return "", fmt.Errorf("%w: create account response missing user_id", ErrProvider)
	}

	return user.UserID, nil
}

// ListRoles returns the provider's role catalog.
func (p *Auth0Provider) ListRoles(ctx context.Context) ([]Role, error) {
	body, err := p.managementCall(ctx, http.MethodGet, "/api/v2/roles", nil)
	if err != nil {
		return nil, err
	}

	var entries []roleEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: decoding role list: %v", ErrProvider, err)
	}

	roles := make([]Role, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" || entry.Name == "" {
			return nil, fmt.Errorf("%w: role entry missing id or name", ErrProvider)
		}
		roles = append(roles, Role{ID: entry.ID, Name: entry.Name})
	}
	return roles, nil
}

// AssignRole grants a catalog role to a user.
func (p *Auth0Provider) AssignRole(ctx context.Context, userID, roleID string) error {
	path := "/api/v2/users/" + url.PathEscape(userID) + "/roles"
	_, err := p.managementCall(ctx, http.MethodPost, path, map[string]interface{}{
		"roles": []string{roleID},
	})
	return err
}

// IssueUserToken exchanges end-user credentials for an access token via the
// resource-owner password grant.
func (p *Auth0Provider) IssueUserToken(ctx context.Context, email, password string) (string, error) {
	payload := map[string]interface{}{
		"grant_type":    "password",
		"username":      email,
		"password":      password,
		"audience":      p.audience,
		"scope":         "openid profile email",
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
	}

	body, err := p.postJSON(ctx, p.baseURL+"/oauth/token", "", payload)
	if err != nil {
		return "", err
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("%w: decoding token response: %v", ErrProvider, err)
	}
	if err := token.validate(); err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// managementCall issues an authorized request against the management API.
func (p *Auth0Provider) managementCall(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	token, err := p.IssueToken(ctx)
	if err != nil {
		return nil, err
	}

	if method == http.MethodGet {
		return p.doRequest(ctx, method, p.baseURL+path, token, nil)
	}
	return p.postJSON(ctx, p.baseURL+path, token, payload)
}

func (p *Auth0Provider) postJSON(ctx context.Context, fullURL, bearer string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrProvider, err)
	}
	return p.doRequest(ctx, http.MethodPost, fullURL, bearer, bytes.NewReader(body))
}

func (p *Auth0Provider) doRequest(ctx context.Context, method, fullURL, bearer string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProvider, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s %s returned %d: %s",
			ErrProvider, method, req.URL.Path, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

var _ IdentityProvider = (*Auth0Provider)(nil)
