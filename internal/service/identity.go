package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/telemetry"
)

var errInvalidCredentials = apperr.Auth(apperr.CodeInvalidCredential, "Invalid email or password.")

// RegisterInput carries a registration request.
type RegisterInput struct {
	Fullname         string
	Email            string
	Password         string
	RepeatedPassword string
}

// Session is an issued access token and the user it belongs to.
type Session struct {
	Token     string
	User      models.User
	ExpiresAt time.Time
}

// Principal is the authenticated caller of a request.
type Principal struct {
	User   models.User
	Claims auth.Claims
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (_ Session, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Register")
	defer telemetry.End(span, &err)

	fullname := strings.TrimSpace(in.Fullname)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if fullname == "" {
		return Session{}, apperr.Validation(apperr.CodeInvalidInput, "Full name is required.").WithField("fullname")
	}
	if err := s.checkEmail(email); err != nil {
		return Session{}, err
	}
	if in.Password != in.RepeatedPassword {
		return Session{}, apperr.Validation(apperr.CodePasswordMismatch, "Passwords do not match.").WithField("password")
	}
	if err := auth.CheckPasswordStrength(in.Password); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	user, err := s.store.CreateUser(ctx, email, fullname, hash)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (_ Session, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Login")
	defer telemetry.End(span, &err)

	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, apperr.Validation(apperr.CodeInvalidInput, "Both email and password are required.")
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if apperr.KindOf(err) == apperr.KindNotFound {
		auth.BurnPasswordCheck(password)
		return Session{}, errInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, errInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (_ Principal, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Authenticate")
	defer telemetry.End(span, &err)

	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.KindAuth, apperr.CodeUnauthenticated, "Invalid or expired token.", err)
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Principal{}, err
	}
	if revoked {
		return Principal{}, apperr.Auth(apperr.CodeUnauthenticated, "Token has been revoked.")
	}
	userID, err := claims.UserID()
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.KindAuth, apperr.CodeUnauthenticated, "Invalid or expired token.", err)
	}
	user, err := s.store.GetUser(ctx, userID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return Principal{}, apperr.Auth(apperr.CodeUnauthenticated, "Account no longer exists.")
	}
	if err != nil {
		return Principal{}, err
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return Principal{User: user, Claims: claims}, nil
}

// Logout revokes the caller's token until it expires.
func (s *Service) Logout(ctx context.Context, p Principal) (err error) {
	ctx, span := s.tracer.Start(ctx, "identity.Logout")
	defer telemetry.End(span, &err)

	if p.Claims.ExpiresAt == nil {
		return apperr.Auth(apperr.CodeUnauthenticated, "Invalid or expired token.")
	}
	return s.revoker.RevokeToken(ctx, p.Claims.ID, p.Claims.ExpiresAt.Time)
}

// EmailCheck looks up an account by email.
func (s *Service) EmailCheck(ctx context.Context, actor models.User, email string) (_ models.User, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.EmailCheck")
	defer telemetry.End(span, &err)

	email = strings.TrimSpace(email)
	if email == "" {
		return models.User{}, apperr.Validation(apperr.CodeInvalidInput, "Email address is required.").WithField("email")
	}
	if err := s.checkEmail(email); err != nil {
		return models.User{}, err
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Debug("email check", slog.Int64("actor_id", actor.ID), slog.Int64("user_id", user.ID))
	return user, nil
}

func (s *Service) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return apperr.Validation(apperr.CodeInvalidInput, "Invalid email address.").WithField("email")
	}
	return nil
}

func (s *Service) issue(user models.User) (Session, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user, ExpiresAt: claims.ExpiresAt.Time}, nil
}
