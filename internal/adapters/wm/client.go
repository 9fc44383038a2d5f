package wm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

var (
	ErrRejected        = errors.New("credentials rejected")
	ErrUnauthorized    = errors.New("session is not authorized")
	ErrStateMismatch   = errors.New("authorize redirect state mismatch")
	ErrMissingRedirect = errors.New("authorize did not redirect")
)

// API holds the provider endpoints. Resource paths may contain {user_id},
// {account_id} and {service_id} placeholders.
type API struct {
	AuthBaseURL   string
	APIBaseURL    string
	AuthnPath     string
	AuthorizePath string
	TokenPath     string
	AccountsPath  string
	ServicesPath  string
	PickupPath    string
	ClientID      string
	APIKey        string
	RedirectURI   string
	Scopes        []string
}

func DefaultAPI() API {
	return API{
		AuthBaseURL:   "https://sso.wm.com",
		APIBaseURL:    "https://rest-api.wm.com",
		AuthnPath:     "/api/v1/authn",
		AuthorizePath: "/oauth2/default/v1/authorize",
		TokenPath:     "/oauth2/default/v1/token",
		AccountsPath:  "/authorize/user/{user_id}/accounts",
		ServicesPath:  "/account/{account_id}/services",
		PickupPath:    "/account/{account_id}/service/{service_id}/pickupinfo",
		RedirectURI:   "https://www.wm.com",
		Scopes:        []string{"openid", "email", "offline_access"},
	}
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Message)
}

// Client talks to the waste-management provider over HTTPS.
type Client struct {
	API            API
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// Location applies to date-only pickup entries.
	Location *time.Location
	Now      func() time.Time
}

var _ ports.Upstream = (*Client)(nil)

func NewClient(api API, timeout time.Duration) *Client {
	return &Client{
		API:            api,
		HTTPClient:     &http.Client{},
		RequestTimeout: timeout,
		Location:       time.Local,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

// getJSON performs an authorized GET against the resource API.
func (c *Client) getJSON(ctx context.Context, op string, session domain.Session, path string, out any) error {
	if !session.Authorized() {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	endpoint, err := buildAPIURL(c.API.APIBaseURL, path)
	if err != nil {
		return err
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	tokenType := session.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	req.Header.Set("Authorization", tokenType+" "+session.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Request-Tracking-Id", uuid.NewString())
	if c.API.APIKey != "" {
		req.Header.Set("apikey", c.API.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeStatusError(op, resp)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}

	return nil
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorSummary     string `json:"errorSummary"`
	Message          string `json:"message"`
}

func decodeStatusError(op string, resp *http.Response) error {
	statusErr := &StatusError{Op: op, Code: resp.StatusCode}

	var payload errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err == nil {
		switch {
		case payload.ErrorSummary != "":
			statusErr.Message = payload.ErrorSummary
		case payload.Error != "" && payload.ErrorDescription != "":
			statusErr.Message = payload.Error + ": " + payload.ErrorDescription
		case payload.Error != "":
			statusErr.Message = payload.Error
		default:
			statusErr.Message = payload.Message
		}
	}

	return statusErr
}

func expandPath(path string, values map[string]string) string {
	for key, value := range values {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	return path
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
