package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"honeyshop/internal/user/lockout"
	"honeyshop/pkg/domainerrors"
	"honeyshop/pkg/requestcontext"
)

// ErrLockedOut is returned by Login when the failure threshold for the
// email+IP pair has been reached. The transport layer reports it as a
// distinct suspicious activity.
var ErrLockedOut = domainerrors.New(domainerrors.CodeUnauthorized, "Too many failed attempts, try again later")

const minPasswordLength = 6

// Service implements account business logic against a pluggable store.
type Service struct {
	store            Store
	tokens           *TokenIssuer
	lockout          lockout.Tracker
	lockoutThreshold int64
	lockoutWindow    time.Duration
	logger           *slog.Logger
}

func NewService(store Store, tokens *TokenIssuer, tracker lockout.Tracker, threshold int64, window time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:            store,
		tokens:           tokens,
		lockout:          tracker,
		lockoutThreshold: threshold,
		lockoutWindow:    window,
		logger:           logger,
	}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is a user plus the freshly issued bearer token.
type AuthResult struct {
	User  *User
	Token string
}

// Register validates the input, rejects duplicate email/username, and
// creates the account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "Please fill in all fields")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "Password must be at least 6 characters")
	}

	if _, err := s.store.FindByEmail(ctx, in.Email); err == nil {
		return nil, domainerrors.New(domainerrors.CodeConflict, "User already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	if _, err := s.store.FindByUsername(ctx, in.Username); err == nil {
		return nil, domainerrors.New(domainerrors.CodeConflict, "User already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	u := &User{
		Username:     in.Username,
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         RoleUser,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "email", u.Email)
	return &AuthResult{User: u, Token: token}, nil
}

// Login verifies credentials. Lockout is checked before the password so a
// guessing bot gets nothing once the threshold trips.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "Please provide email and password")
	}

	key := lockoutKey(ctx, email)
	if failures, err := s.lockout.Failures(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "lockout check failed", "error", err)
	} else if failures >= s.lockoutThreshold {
		return nil, ErrLockedOut
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recordFailure(ctx, key)
			return nil, domainerrors.New(domainerrors.CodeUnauthorized, "Invalid email or password")
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, key)
		return nil, domainerrors.New(domainerrors.CodeUnauthorized, "Invalid email or password")
	}

	if err := s.lockout.Reset(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "lockout reset failed", "error", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

// Profile returns the account for id.
func (s *Service) Profile(ctx context.Context, id int64) (*User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return u, nil
}

// UpdateInput carries optional profile updates; empty fields keep their
// current values, matching the reference behavior.
type UpdateInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Address   Address
	Phone     string
}

// UpdateProfile applies non-empty fields and reissues a token.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateInput) (*AuthResult, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	applyIfSet(&u.Username, in.Username)
	applyIfSet(&u.Email, strings.ToLower(in.Email))
	applyIfSet(&u.FirstName, in.FirstName)
	applyIfSet(&u.LastName, in.LastName)
	applyIfSet(&u.Address.Street, in.Address.Street)
	applyIfSet(&u.Address.City, in.Address.City)
	applyIfSet(&u.Address.State, in.Address.State)
	applyIfSet(&u.Address.ZipCode, in.Address.ZipCode)
	applyIfSet(&u.Address.Country, in.Address.Country)
	applyIfSet(&u.Phone, in.Phone)

	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return nil, domainerrors.New(domainerrors.CodeInvalidInput, "Password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.store.Update(ctx, u); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

// Authenticate resolves a bearer token to its account. Used by the auth
// middleware.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeUnauthorized, "Not authorized, user not found")
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "Server error", err)
	}
	return u, nil
}

func (s *Service) recordFailure(ctx context.Context, key string) {
	if _, err := s.lockout.RecordFailure(ctx, key, s.lockoutWindow); err != nil {
		s.logger.WarnContext(ctx, "lockout record failed", "error", err)
	}
}

// lockoutKey scopes failure counting to the email and originating IP so a
// distributed guesser cannot lock a victim out from one address.
func lockoutKey(ctx context.Context, email string) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(email), requestcontext.ClientIP(ctx))
}

func applyIfSet(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
