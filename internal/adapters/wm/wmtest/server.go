// Package wmtest runs an in-process fake of the waste-management provider.
package wmtest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/adapters/wm"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	ClientID = "test-client"
	APIKey   = "test-key"
)

type Fixture struct {
	Username string
	Password string
	UserID   string
	Accounts []domain.Account
	Services map[domain.AccountID][]domain.Service
	// Pickups is keyed by "<account_id>_<service_id>".
	Pickups map[string][]string
}

type Server struct {
	*httptest.Server

	AuthnCalls     atomic.Int32
	AuthorizeCalls atomic.Int32
	PickupCalls    atomic.Int32
	FailAuthorize  atomic.Bool
	FailPickups    atomic.Bool
	pickupDelay    atomic.Int64

	mu       sync.Mutex
	fixture  Fixture
	sessions map[string]struct{}
	codes    map[string]string
	tokens   map[string]struct{}
	seq      int
}

func NewServer(fixture Fixture) *Server {
	s := &Server{
		fixture:  fixture,
		sessions: make(map[string]struct{}),
		codes:    make(map[string]string),
		tokens:   make(map[string]struct{}),
	}

	r := chi.NewRouter()
	r.Post("/api/v1/authn", s.handleAuthn)
	r.Get("/oauth2/default/v1/authorize", s.handleAuthorize)
	r.Post("/oauth2/default/v1/token", s.handleToken)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/authorize/user/{userID}/accounts", s.handleAccounts)
		r.Get("/account/{accountID}/services", s.handleServices)
		r.Get("/account/{accountID}/service/{serviceID}/pickupinfo", s.handlePickups)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// API points every endpoint at the fake.
func (s *Server) API() wm.API {
	api := wm.DefaultAPI()
	api.AuthBaseURL = s.URL
	api.APIBaseURL = s.URL
	api.ClientID = ClientID
	api.APIKey = APIKey
	return api
}

func (s *Server) SetPickups(key string, dates ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixture.Pickups == nil {
		s.fixture.Pickups = make(map[string][]string)
	}
	s.fixture.Pickups[key] = dates
}

// SetPickupDelay slows every pickup response down by d.
func (s *Server) SetPickupDelay(d time.Duration) {
	s.pickupDelay.Store(int64(d))
}

func (s *Server) next(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Server) handleAuthn(w http.ResponseWriter, r *http.Request) {
	s.AuthnCalls.Add(1)

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"errorSummary": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Username != s.fixture.Username || body.Password != s.fixture.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"errorSummary": "Authentication failed"})
		return
	}

	token := s.next("st")
	s.sessions[token] = struct{}{}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "SUCCESS",
		"sessionToken": token,
		"_embedded":    map[string]any{"user": map[string]string{"id": s.fixture.UserID}},
	})
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	s.AuthorizeCalls.Add(1)

	q := r.URL.Query()
	redirect, err := url.Parse(q.Get("redirect_uri"))
	if err != nil || q.Get("client_id") != ClientID {
		http.Error(w, "bad client", http.StatusBadRequest)
		return
	}

	values := url.Values{}
	values.Set("state", q.Get("state"))

	s.mu.Lock()
	_, known := s.sessions[q.Get("sessionToken")]
	delete(s.sessions, q.Get("sessionToken"))
	switch {
	case s.FailAuthorize.Load():
		values.Set("error", "access_denied")
		values.Set("error_description", "policy evaluation failed")
	case !known:
		values.Set("error", "login_required")
	default:
		code := s.next("code")
		s.codes[code] = q.Get("code_challenge")
		values.Set("code", code)
	}
	s.mu.Unlock()

	redirect.RawQuery = values.Encode()
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.codes[r.PostForm.Get("code")]
	delete(s.codes, r.PostForm.Get("code"))
	sum := sha256.Sum256([]byte(r.PostForm.Get("code_verifier")))
	if !ok || base64.RawURLEncoding.EncodeToString(sum[:]) != challenge {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "PKCE verification failed"})
		return
	}

	token := s.next("at")
	s.tokens[token] = struct{}{}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"id_token":     s.next("id"),
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()

		if !ok || r.Header.Get("apikey") != APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chi.URLParam(r, "userID") != s.fixture.UserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
		return
	}

	accounts := make([]map[string]string, 0, len(s.fixture.Accounts))
	for _, account := range s.fixture.Accounts {
		accounts = append(accounts, map[string]string{"custAccountId": string(account.ID), "name": account.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"linkedAccounts": accounts}})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listed, ok := s.fixture.Services[domain.AccountID(chi.URLParam(r, "accountID"))]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown account"})
		return
	}

	services := make([]map[string]string, 0, len(listed))
	for _, service := range listed {
		services = append(services, map[string]string{"serviceId": string(service.ID), "serviceName": service.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"services": services}})
}

func (s *Server) handlePickups(w http.ResponseWriter, r *http.Request) {
	s.PickupCalls.Add(1)
	if d := time.Duration(s.pickupDelay.Load()); d > 0 {
		time.Sleep(d)
	}
	if s.FailPickups.Load() {
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "upstream unavailable"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := chi.URLParam(r, "accountID") + "_" + chi.URLParam(r, "serviceID")
	dates, ok := s.fixture.Pickups[key]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown service"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"pickupScheduleInfo": map[string]any{"pickupDates": dates}},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
