package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/feedpulse/feedpulse/apperror"
	"github.com/feedpulse/feedpulse/config"
	"github.com/feedpulse/feedpulse/services"
	"github.com/feedpulse/feedpulse/utils"
)

// OAuthController handles third-party login via GitHub and Google.
type OAuthController struct {
	auth *services.AuthService
}

// NewOAuthController creates an OAuthController.
func NewOAuthController(auth *services.AuthService) *OAuthController {
	return &OAuthController{auth: auth}
}

// Redirect generates a provider-specific authorization URL with a
// single-use state token.
func (o *OAuthController) Redirect(ctx *gin.Context) {
	provider := ctx.Param("provider")
	cfg, err := oauthConfig(provider)
	if err != nil {
		utils.Fail(ctx, apperror.NewValidation(err.Error()))
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	ctx.JSON(http.StatusOK, gin.H{"authorization_url": url, "state": state})
}

// Callback exchanges the authorization code for a provider identity and
// issues a session token.
func (o *OAuthController) Callback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Fail(ctx, apperror.NewValidation("missing code or state"))
		return
	}
	if !utils.ConsumeState(state) {
		utils.Fail(ctx, apperror.NewValidation("invalid or expired state"))
		return
	}

	cfg, err := oauthConfig(provider)
	if err != nil {
		utils.Fail(ctx, apperror.NewValidation(err.Error()))
		return
	}

	exchanged, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Fail(ctx, apperror.NewValidation("failed to exchange code"))
		return
	}

	identity, err := fetchOAuthUser(provider, exchanged)
	if err != nil {
		utils.Fail(ctx, apperror.NewInternal("failed to fetch provider identity", err))
		return
	}

	token, userID, aerr := o.auth.LoginOAuth(provider, identity.ID, identity.Email, identity.Name)
	if aerr != nil {
		utils.Fail(ctx, aerr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "userId": userID})
}

type oauthUser struct {
	ID    string
	Name  string
	Email string
}

func oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchGitHubUser(token)
	case "google":
		return fetchGoogleUser(token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchGitHubUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	email, _ := fetchGitHubEmail(token.AccessToken)

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = payload.Login
	}
	return &oauthUser{
		ID:    fmt.Sprintf("%d", payload.ID),
		Name:  name,
		Email: email,
	}, nil
}

func fetchGitHubEmail(accessToken string) (string, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user/emails", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails request failed: %s", resp.Status)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, email := range emails {
		if email.Primary && email.Verified {
			return email.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &oauthUser{
		ID:    payload.ID,
		Name:  payload.Name,
		Email: payload.Email,
	}, nil
}
