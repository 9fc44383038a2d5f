package wm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bnema/wm-pickup-cli/internal/domain"
)

const authnStatusSuccess = "SUCCESS"

type authnRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authnResponse struct {
	Status       string `json:"status"`
	SessionToken string `json:"sessionToken"`
	Embedded     struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"_embedded"`
}

// Authenticate exchanges a username and password for a one-time session
// token.
func (c *Client) Authenticate(ctx context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" {
		return domain.Session{}, fmt.Errorf("authenticate: %w", ErrRejected)
	}

	endpoint, err := buildAPIURL(c.API.AuthBaseURL, c.API.AuthnPath)
	if err != nil {
		return domain.Session{}, err
	}

	body, err := json.Marshal(authnRequest{Username: username, Password: password})
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode authn request: %w", err)
	}

	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Session{}, fmt.Errorf("create authn request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return domain.Session{}, fmt.Errorf("authenticate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.Session{}, errors.Join(ErrRejected, decodeStatusError("authenticate", resp))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Session{}, decodeStatusError("authenticate", resp)
	}

	var payload authnResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.Session{}, fmt.Errorf("decode authn response: %w", err)
	}
	if payload.Status != authnStatusSuccess {
		return domain.Session{}, fmt.Errorf("authenticate: unsupported status %q: %w", payload.Status, ErrRejected)
	}
	if payload.SessionToken == "" || payload.Embedded.User.ID == "" {
		return domain.Session{}, errors.New("authn response missing required fields")
	}

	return domain.Session{
		UserID:       payload.Embedded.User.ID,
		SessionToken: payload.SessionToken,
	}, nil
}
