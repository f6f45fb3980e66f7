// ABOUTME: Login, register and logout against the auth endpoints.
// ABOUTME: Keeps the bearer token and user data in the cache and serves them to the API client.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/models"
)

// AuthService implements api.TokenSource.
type AuthService struct {
	*base
}

var _ api.TokenSource = (*AuthService)(nil)

// Login authenticates and caches the token, the user and their workouts.
// The token lives as long as the server says it does.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	var resp models.LoginResponse
	if err := s.api.Post(ctx, api.PathLogin, models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, errors.New("login: server returned no token")
	}

	var tokenTTL time.Duration
	if resp.ExpiresIn > 0 {
		tokenTTL = time.Duration(resp.ExpiresIn) * time.Millisecond
	}

	var err error
	err = multierr.Append(err, s.cache.SetItem(KeyToken, resp.Token, tokenTTL))
	err = multierr.Append(err, s.cache.SetItem(KeyUserData, resp.UserData, tokenTTL))
	if resp.Workouts != nil {
		err = multierr.Append(err, s.cache.SetItem(WorkoutsKey(resp.UserData.ID), resp.Workouts, 0))
	}
	if err != nil {
		return nil, fmt.Errorf("login: save session: %w", err)
	}

	log.WithField("user_id", resp.UserData.ID).Info("logged in")
	return &resp, nil
}

// Register creates an account. It does not log in.
func (s *AuthService) Register(ctx context.Context, user models.User) (*models.APIMessage, error) {
	if strings.TrimSpace(user.Email) == "" || user.Password == "" {
		return nil, errors.New("email and password are required")
	}
	if strings.TrimSpace(user.Name) == "" {
		return nil, errors.New("name is required")
	}
	if user.MembershipStatus == "" {
		user.MembershipStatus = models.MembershipFree
	}

	var msg models.APIMessage
	if err := s.api.Post(ctx, api.PathRegister, user, &msg); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &msg, nil
}

// Logout tells the server and then forgets the session, the user's workouts
// and their analytics. Local state is cleared even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	user, err := s.CurrentUser()
	if err != nil {
		return err
	}

	var errs error
	if err := s.api.Post(ctx, api.PathLogout, user, nil); err != nil {
		log.Warnf("server logout failed, clearing local session anyway: %s", err)
		errs = multierr.Append(errs, fmt.Errorf("logout: %w", err))
	}

	errs = multierr.Append(errs, s.cache.RemoveItem(KeyToken))
	errs = multierr.Append(errs, s.cache.RemoveItem(KeyUserData))
	errs = multierr.Append(errs, s.cache.RemoveItem(WorkoutsKey(user.ID)))
	errs = multierr.Append(errs, clearAnalytics(s.cache, user.ID))
	return errs
}

// CurrentUser returns the cached user, or ErrNotLoggedIn.
func (s *AuthService) CurrentUser() (*models.User, error) {
	var user models.User
	found, err := s.cache.GetItem(KeyUserData, &user)
	if err != nil {
		return nil, fmt.Errorf("read user data: %w", err)
	}
	if !found {
		return nil, ErrNotLoggedIn
	}
	return &user, nil
}

// UserID returns the cached user's ID, or ErrNotLoggedIn.
func (s *AuthService) UserID() (int64, error) {
	user, err := s.CurrentUser()
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Token returns the cached bearer token, or "" when there is none.
func (s *AuthService) Token() (string, error) {
	var token string
	if _, err := s.cache.GetItem(KeyToken, &token); err != nil {
		return "", err
	}
	return token, nil
}

// ClearToken forgets the token after the server rejected it.
func (s *AuthService) ClearToken() error {
	return s.cache.RemoveItem(KeyToken)
}
