package user

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/audit"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)
)

var errBadCreds = apperr.New(apperr.Unauthorized, "incorrect username or password")

type Service struct {
	repo   Repository
	tokens *Tokens
	audit  audit.Recorder
}

func NewService(repo Repository, tokens *Tokens, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{repo: repo, tokens: tokens, audit: rec}
}

// Register creates an account. Uniqueness of email and username is enforced
// by the store, so two concurrent registrations cannot both win.
func (s *Service) Register(ctx context.Context, email, username, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	switch {
	case len(email) > 254 || !reEmail.MatchString(email):
		return nil, apperr.New(apperr.InvalidRequest, "invalid email")
	case !reUsername.MatchString(username):
		return nil, apperr.New(apperr.InvalidRequest, "username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	case password == "":
		return nil, apperr.New(apperr.InvalidRequest, "password is required")
	case len(password) > maxPasswordBytes:
		return nil, apperr.New(apperr.InvalidRequest, "password is too long")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "hash password")
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.audit.Record(ctx, "user.register",
			slog.String("username", username), slog.Bool("ok", false), slog.String("reason", apperr.KindOf(err).String()))
		return nil, err
	}
	s.audit.Record(ctx, "user.register",
		slog.String("user_id", u.ID), slog.String("username", username), slog.Bool("ok", true))
	return u, nil
}

// Authenticate checks the credential and issues a session token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.InvalidRequest, "username and password are required")
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			s.audit.Record(ctx, "user.login", slog.String("username", username), slog.Bool("ok", false), slog.String("reason", "unknown"))
			return nil, errBadCreds
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.audit.Record(ctx, "user.login", slog.String("username", username), slog.Bool("ok", false), slog.String("reason", "password"))
		return nil, errBadCreds
	}
	if !u.IsActive {
		s.audit.Record(ctx, "user.login", slog.String("username", username), slog.Bool("ok", false), slog.String("reason", "inactive"))
		return nil, errBadCreds
	}

	raw, exp, err := s.tokens.Issue(u.Username)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "issue token")
	}
	s.audit.Record(ctx, "user.login", slog.String("user_id", u.ID), slog.String("username", username), slog.Bool("ok", true))
	return &Token{AccessToken: raw, TokenType: "bearer", ExpiresAt: exp.UTC()}, nil
}

// ResolveSession returns the account behind a bearer token.
func (s *Service) ResolveSession(ctx context.Context, raw string) (*User, error) {
	unauthorized := apperr.New(apperr.Unauthorized, "could not validate credentials")
	if raw == "" {
		return nil, unauthorized
	}
	subject, err := s.tokens.Verify(raw)
	if err != nil {
		s.audit.Record(ctx, "user.session", slog.Bool("ok", false), slog.String("reason", "token"))
		return nil, unauthorized
	}
	u, err := s.repo.GetByUsername(ctx, subject)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			s.audit.Record(ctx, "user.session", slog.String("username", subject), slog.Bool("ok", false), slog.String("reason", "unknown"))
			return nil, unauthorized
		}
		return nil, err
	}
	if !u.IsActive {
		s.audit.Record(ctx, "user.session", slog.String("username", subject), slog.Bool("ok", false), slog.String("reason", "inactive"))
		return nil, unauthorized
	}
	s.audit.Record(ctx, "user.session", slog.String("user_id", u.ID), slog.Bool("ok", true))
	return u, nil
}

// SetActive toggles the only mutable account field.
func (s *Service) SetActive(ctx context.Context, username string, active bool) error {
	if err := s.repo.SetActive(ctx, username, active); err != nil {
		return err
	}
	s.audit.Record(ctx, "user.set_active", slog.String("username", username), slog.Bool("active", active))
	return nil
}
