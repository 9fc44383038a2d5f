package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/rs/zerolog"
)

// ErrFlowCompleted is returned when a finished flow is submitted again.
var ErrFlowCompleted = errors.New("onboarding already completed")

type StepID string

const (
	StepCredentials StepID = "credentials"
	StepAccount     StepID = "account"
	StepServices    StepID = "services"
)

// ErrorCode is the marker a host renders next to a form.
type ErrorCode string

const (
	ErrorCodeInvalidAuth    ErrorCode = "invalid_auth"
	ErrorCodeUnknown        ErrorCode = "unknown"
	ErrorCodeInvalidAccount ErrorCode = "invalid_account"
	ErrorCodeNoServices     ErrorCode = "no_services"
	ErrorCodeInvalidService ErrorCode = "invalid_service"
)

func (c ErrorCode) Message() string {
	switch c {
	case ErrorCodeInvalidAuth:
		return "invalid username or password"
	case ErrorCodeInvalidAccount:
		return "select one of the listed accounts"
	case ErrorCodeNoServices:
		return "select at least one service"
	case ErrorCodeInvalidService:
		return "select only listed services"
	default:
		return "unexpected error, see logs for details"
	}
}

// FieldBase is the form-wide error slot.
const FieldBase = "base"

type Option struct {
	Value string
	Label string
}

// Form describes what a host should render for the current step.
type Form struct {
	StepID   StepID
	Fields   []string
	Options  []Option
	Defaults []string
	Errors   map[string]ErrorCode
}

func (f Form) Error() (ErrorCode, bool) {
	code, ok := f.Errors[FieldBase]
	return code, ok
}

// FormError is returned by a step when the submission was rejected and the
// same step should be shown again.
type FormError struct {
	Step  StepID
	Code  ErrorCode
	Cause error
}

func (e *FormError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Code)
	}

	return fmt.Sprintf("%s: %s: %v", e.Step, e.Code, e.Cause)
}

func (e *FormError) Unwrap() error {
	return e.Cause
}

// SecretKey is where an entry's password is stored.
func SecretKey(accountID domain.AccountID) string {
	return fmt.Sprintf("wm://%s/password", accountID)
}

// Onboarding drives the three-step flow that produces a ConfigEntry. A flow
// expects one submission at a time; steps must not be submitted concurrently.
type Onboarding struct {
	validator  *CredentialValidator
	discoverer *Discoverer
	repo       ports.SubscriptionRepository
	secrets    ports.SecretStore
	log        zerolog.Logger
}

func NewOnboarding(validator *CredentialValidator, discoverer *Discoverer, repo ports.SubscriptionRepository, secrets ports.SecretStore, log zerolog.Logger) *Onboarding {
	return &Onboarding{
		validator:  validator,
		discoverer: discoverer,
		repo:       repo,
		secrets:    secrets,
		log:        log.With().Str("component", "onboarding").Logger(),
	}
}

func (o *Onboarding) Begin() *CredentialsStep {
	return &CredentialsStep{
		o: o,
		form: Form{
			StepID: StepCredentials,
			Fields: []string{"username", "password"},
		},
	}
}

type CredentialsStep struct {
	o    *Onboarding
	form Form
}

func (s *CredentialsStep) Form() Form {
	return s.form
}

// Submit validates the credentials. On success the account list is fetched
// and the account step is returned; a listing failure is reported on that
// step rather than here.
func (s *CredentialsStep) Submit(ctx context.Context, creds domain.Credentials) (*AccountStep, error) {
	s.form.Errors = nil
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, s.reject(ErrorCodeInvalidAuth, errors.New("username and password are required"))
	}

	session, err := s.o.validator.Authenticate(ctx, creds)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrInvalidAuth) {
			s.o.log.Info().Object("credentials", creds).Err(err).Msg("credentials rejected")
			return nil, s.reject(ErrorCodeInvalidAuth, err)
		}
		s.o.log.Error().Object("credentials", creds).Err(err).Msg("unexpected error during authentication")
		return nil, s.reject(ErrorCodeUnknown, err)
	}

	next := &AccountStep{
		o:       s.o,
		creds:   creds,
		session: session,
		form:    Form{StepID: StepAccount, Fields: []string{"account_id"}},
	}
	next.load(ctx)

	return next, nil
}

func (s *CredentialsStep) reject(code ErrorCode, cause error) error {
	s.form.Errors = map[string]ErrorCode{FieldBase: code}
	return &FormError{Step: StepCredentials, Code: code, Cause: cause}
}

type AccountStep struct {
	o        *Onboarding
	creds    domain.Credentials
	session  domain.Session
	accounts []domain.Account
	form     Form
}

func (s *AccountStep) load(ctx context.Context) {
	accounts, err := s.o.discoverer.ListAccounts(ctx, s.session)
	if err != nil {
		s.o.log.Error().Err(err).Msg("list accounts")
		s.form.Errors = map[string]ErrorCode{FieldBase: ErrorCodeUnknown}
		return
	}

	s.accounts = accounts
	s.form.Options = make([]Option, 0, len(accounts))
	for _, account := range accounts {
		s.form.Options = append(s.form.Options, Option{Value: string(account.ID), Label: account.Name})
	}
}

func (s *AccountStep) Form() Form {
	return s.form
}

func (s *AccountStep) Accounts() []domain.Account {
	return append([]domain.Account(nil), s.accounts...)
}

// Submit selects one of the listed accounts and fetches its services.
func (s *AccountStep) Submit(ctx context.Context, accountID domain.AccountID) (*ServiceStep, error) {
	s.form.Errors = nil
	if _, ok := domain.FindAccount(s.accounts, accountID); !ok {
		s.form.Errors = map[string]ErrorCode{FieldBase: ErrorCodeInvalidAccount}
		return nil, &FormError{Step: StepAccount, Code: ErrorCodeInvalidAccount, Cause: fmt.Errorf("account %q was not listed", accountID)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := &ServiceStep{
		o:         s.o,
		creds:     s.creds,
		session:   s.session,
		accounts:  s.accounts,
		accountID: accountID,
		form:      Form{StepID: StepServices, Fields: []string{"service_ids"}},
	}
	next.load(ctx)

	return next, nil
}

type ServiceStep struct {
	o         *Onboarding
	creds     domain.Credentials
	session   domain.Session
	accounts  []domain.Account
	accountID domain.AccountID
	services  []domain.Service
	form      Form
	aborted   error
	completed bool
}

func (s *ServiceStep) load(ctx context.Context) {
	services, err := s.o.discoverer.ListServices(ctx, s.session, s.accountID)
	if err != nil {
		s.o.log.Error().Err(err).Str("account_id", string(s.accountID)).Msg("list services")
		s.form.Errors = map[string]ErrorCode{FieldBase: ErrorCodeUnknown}
		return
	}

	s.services = services
	s.form.Options = make([]Option, 0, len(services))
	s.form.Defaults = make([]string, 0, len(services))
	for _, service := range services {
		s.form.Options = append(s.form.Options, Option{Value: string(service.ID), Label: service.Name})
		s.form.Defaults = append(s.form.Defaults, string(service.ID))
	}
}

func (s *ServiceStep) Form() Form {
	return s.form
}

func (s *ServiceStep) AccountID() domain.AccountID {
	return s.accountID
}

func (s *ServiceStep) Services() []domain.Service {
	return append([]domain.Service(nil), s.services...)
}

// Submit completes the flow: the password goes to the secret store and the
// entry is persisted. Repeated ids collapse to one. Once an entry is saved
// the step accepts no further submissions.
func (s *ServiceStep) Submit(ctx context.Context, serviceIDs []domain.ServiceID) (domain.ConfigEntry, error) {
	if s.aborted != nil {
		return domain.ConfigEntry{}, s.aborted
	}
	if s.completed {
		return domain.ConfigEntry{}, fmt.Errorf("%w: account %s", ErrFlowCompleted, s.accountID)
	}
	s.form.Errors = nil

	if len(serviceIDs) == 0 {
		return domain.ConfigEntry{}, s.reject(ErrorCodeNoServices, errors.New("no service selected"))
	}

	selected := make([]domain.Service, 0, len(serviceIDs))
	seen := make(map[domain.ServiceID]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		service, ok := domain.FindService(s.services, id)
		if !ok {
			return domain.ConfigEntry{}, s.reject(ErrorCodeInvalidService, fmt.Errorf("service %q was not listed", id))
		}
		seen[id] = struct{}{}
		selected = append(selected, service)
	}

	account, ok := domain.FindAccount(s.accounts, s.accountID)
	if !ok {
		s.aborted = fmt.Errorf("%w: account %s is missing from the fetched accounts", domain.ErrInconsistentState, s.accountID)
		s.o.log.Error().Err(s.aborted).Msg("onboarding aborted")
		return domain.ConfigEntry{}, s.aborted
	}

	entry := domain.ConfigEntry{
		Title:     account.Name,
		Username:  s.creds.Username,
		SecretRef: SecretKey(account.ID),
		AccountID: account.ID,
		Services:  selected,
	}
	if err := s.o.persist(ctx, entry, s.creds.Password); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ConfigEntry{}, ctxErr
		}
		s.o.log.Error().Err(err).Str("account_id", string(account.ID)).Msg("persist subscription")
		return domain.ConfigEntry{}, s.reject(ErrorCodeUnknown, err)
	}

	s.completed = true
	s.o.log.Info().
		Str("account_id", string(entry.AccountID)).
		Int("services", len(entry.Services)).
		Msg("onboarding complete")

	return entry, nil
}

func (s *ServiceStep) reject(code ErrorCode, cause error) error {
	s.form.Errors = map[string]ErrorCode{FieldBase: code}
	return &FormError{Step: StepServices, Code: code, Cause: cause}
}

func (o *Onboarding) persist(ctx context.Context, entry domain.ConfigEntry, password string) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validate entry: %w", err)
	}

	// A re-onboarded account already has a password that must survive a
	// failed save.
	previous, err := o.secrets.Get(ctx, entry.SecretRef)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return fmt.Errorf("read stored password: %w", err)
	}

	if err := o.secrets.Put(ctx, entry.SecretRef, password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	if err := o.repo.Save(ctx, entry); err != nil {
		var rollbackErr error
		if hadPrevious {
			rollbackErr = o.secrets.Put(ctx, entry.SecretRef, previous)
		} else {
			rollbackErr = o.secrets.Delete(ctx, entry.SecretRef)
		}
		if rollbackErr != nil {
			return fmt.Errorf("save subscription and rollback stored password: %w", errors.Join(err, rollbackErr))
		}

		return fmt.Errorf("save subscription: %w", err)
	}

	return nil
}
