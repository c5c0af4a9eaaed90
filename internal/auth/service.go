package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// bcryptCost matches the cost the stored hashes were produced with.
const bcryptCost = 12

// Service wraps registration, login and token refresh business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs a Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Credentials pairs a fresh access token with its refresh token.
type Credentials struct {
	Token        string
	RefreshToken string
}

func isNotFound(err error) bool {
	var apiErr *httpx.Error
	return errors.As(err, &apiErr) && apiErr.Kind == httpx.KindNotFound
}

// Register creates an account and signs its first token pair. The role
// defaults to the standard user role when none is given.
func (s *Service) Register(ctx context.Context, email, password string, roleID int64) (*User, Credentials, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, Credentials{}, httpx.ConflictError("a user with this email already exists")
	} else if !isNotFound(err) {
		return nil, Credentials{}, err
	}

	var role *Role
	var err error
	if roleID > 0 {
		role, err = s.repo.FindRole(ctx, roleID)
	} else {
		role, err = s.repo.FindRoleByName(ctx, DefaultRole)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, Credentials{}, httpx.ValidationError("invalid role", nil)
		}
		return nil, Credentials{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, Credentials{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hash), role.ID)
	if err != nil {
		return nil, Credentials{}, err
	}

	creds, err := s.issue(user)
	if err != nil {
		return nil, Credentials{}, err
	}
	return user, creds, nil
}

// Login validates email/password credentials and signs a token pair. Unknown
// emails and wrong passwords produce the same message so the endpoint does
// not confirm account existence.
func (s *Service) Login(ctx context.Context, email, password string) (*User, Credentials, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, Credentials{}, httpx.AuthenticationError("invalid email or password")
		}
		return nil, Credentials{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, Credentials{}, httpx.AuthenticationError("invalid email or password")
	}

	creds, err := s.issue(user)
	if err != nil {
		return nil, Credentials{}, err
	}
	return user, creds, nil
}

// Lookup loads a user by id. Token validity does not imply the account still
// exists; every authenticated request goes through here.
func (s *Service) Lookup(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, ErrWrongTokenType) {
			return "", httpx.AuthenticationError("invalid refresh token")
		}
		return "", err
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return "", httpx.AuthenticationError("user not found")
		}
		return "", err
	}
	return s.tokens.Issue(user.ID, user.Email)
}

func (s *Service) issue(user *User) (Credentials, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: token, RefreshToken: refresh}, nil
}
