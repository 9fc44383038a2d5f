package wm

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/google/uuid"
)

const PKCEChallengeMethodS256 = "S256"

type PKCEPair struct {
	Verifier  string
	Challenge string
}

func NewPKCEPair() (PKCEPair, error) {
	verifierBytes := make([]byte, 32)
	if _, err := rand.Read(verifierBytes); err != nil {
		return PKCEPair{}, err
	}

	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)
	hash := sha256.Sum256([]byte(verifier))

	return PKCEPair{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(hash[:]),
	}, nil
}

func NewState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// AuthorizationRequest is the silent authorize call made with a session
// token instead of a browser login.
type AuthorizationRequest struct {
	AuthURL       string
	ClientID      string
	RedirectURI   string
	Scopes        []string
	State         string
	Nonce         string
	CodeChallenge string
	SessionToken  string
}

func BuildAuthorizationURL(req AuthorizationRequest) (string, error) {
	if req.AuthURL == "" {
		return "", errors.New("auth url is required")
	}
	if req.ClientID == "" {
		return "", errors.New("client id is required")
	}
	if req.RedirectURI == "" {
		return "", errors.New("redirect uri is required")
	}
	if req.State == "" {
		return "", errors.New("state is required")
	}
	if req.CodeChallenge == "" {
		return "", errors.New("code challenge is required")
	}
	if req.SessionToken == "" {
		return "", errors.New("session token is required")
	}

	parsed, err := url.Parse(req.AuthURL)
	if err != nil {
		return "", fmt.Errorf("parse auth url: %w", err)
	}

	q := parsed.Query()
	q.Set("response_type", "code")
	q.Set("response_mode", "query")
	q.Set("prompt", "none")
	q.Set("client_id", req.ClientID)
	q.Set("redirect_uri", req.RedirectURI)
	if len(req.Scopes) > 0 {
		q.Set("scope", strings.Join(req.Scopes, " "))
	}
	q.Set("state", req.State)
	if req.Nonce != "" {
		q.Set("nonce", req.Nonce)
	}
	q.Set("code_challenge", req.CodeChallenge)
	q.Set("code_challenge_method", PKCEChallengeMethodS256)
	q.Set("sessionToken", req.SessionToken)
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

type exchangedTokens struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authorize turns the session token from Authenticate into API tokens. The
// authorize endpoint answers with a redirect carrying the code, which is then
// exchanged with the PKCE verifier.
func (c *Client) Authorize(ctx context.Context, session domain.Session) (domain.Session, error) {
	if session.SessionToken == "" {
		return domain.Session{}, errors.New("authorize: session token is required")
	}

	authorizeURL, err := buildAPIURL(c.API.AuthBaseURL, c.API.AuthorizePath)
	if err != nil {
		return domain.Session{}, err
	}

	pkce, err := NewPKCEPair()
	if err != nil {
		return domain.Session{}, fmt.Errorf("generate pkce pair: %w", err)
	}
	state, err := NewState()
	if err != nil {
		return domain.Session{}, fmt.Errorf("generate state: %w", err)
	}

	target, err := BuildAuthorizationURL(AuthorizationRequest{
		AuthURL:       authorizeURL,
		ClientID:      c.API.ClientID,
		RedirectURI:   c.API.RedirectURI,
		Scopes:        c.API.Scopes,
		State:         state,
		Nonce:         uuid.NewString(),
		CodeChallenge: pkce.Challenge,
		SessionToken:  session.SessionToken,
	})
	if err != nil {
		return domain.Session{}, err
	}

	code, err := c.requestCode(ctx, target, state)
	if err != nil {
		return domain.Session{}, err
	}

	tokens, err := c.exchangeCode(ctx, code, pkce.Verifier)
	if err != nil {
		return domain.Session{}, err
	}

	authorized := session
	authorized.SessionToken = ""
	authorized.AccessToken = tokens.AccessToken
	authorized.IDToken = tokens.IDToken
	authorized.TokenType = tokens.TokenType
	if tokens.ExpiresIn > 0 {
		authorized.ExpiresAt = c.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}

	return authorized, nil
}

func (c *Client) requestCode(ctx context.Context, target string, expectedState string) (string, error) {
	base := c.httpClient()
	noRedirect := *base
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create authorize request: %w", err)
	}

	resp, err := noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("authorize: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeStatusError("authorize", resp)
	}
	if resp.StatusCode < http.StatusMultipleChoices {
		return "", fmt.Errorf("authorize: %w", ErrMissingRedirect)
	}

	location, err := resp.Location()
	if err != nil {
		return "", fmt.Errorf("authorize: %w", ErrMissingRedirect)
	}

	q := location.Query()
	if oauthError := q.Get("error"); oauthError != "" {
		if description := q.Get("error_description"); description != "" {
			oauthError = oauthError + ": " + description
		}
		return "", fmt.Errorf("authorize: %s", oauthError)
	}
	if q.Get("state") != expectedState {
		return "", ErrStateMismatch
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("authorize: missing authorization code")
	}

	return code, nil
}

func (c *Client) exchangeCode(ctx context.Context, code string, verifier string) (exchangedTokens, error) {
	endpoint, err := buildAPIURL(c.API.AuthBaseURL, c.API.TokenPath)
	if err != nil {
		return exchangedTokens{}, err
	}

	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("redirect_uri", c.API.RedirectURI)
	values.Set("client_id", c.API.ClientID)
	values.Set("code_verifier", verifier)

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return exchangedTokens{}, fmt.Errorf("create token exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return exchangedTokens{}, fmt.Errorf("exchange code for tokens: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return exchangedTokens{}, decodeStatusError("exchange code for tokens", resp)
	}

	var tokens exchangedTokens
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&tokens); err != nil {
		return exchangedTokens{}, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return exchangedTokens{}, errors.New("token response missing access token")
	}

	return tokens, nil
}
