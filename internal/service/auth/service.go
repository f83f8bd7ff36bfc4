package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clusterboard/dashboard-api/internal/model"
	"github.com/clusterboard/dashboard-api/internal/repository"
	"github.com/clusterboard/dashboard-api/pkg/token"
)

// ErrInvalidCredentials covers wrong password, unknown user and locked-out
// account alike, so the response gives no oracle about which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

const ssoSAML2 = "saml2"

// Compared when the username has no record, so response timing does not
// reveal account existence.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Service orchestrates login, logout and session checks across the
// credential store, the lockout policy and the token manager.
type Service struct {
	users       repository.UserRepository
	tokens      *token.Manager
	lockout     *LockoutPolicy
	ssoProtocol string
	logger      zerolog.Logger
}

func NewService(users repository.UserRepository, tokens *token.Manager,
	lockout *LockoutPolicy, ssoProtocol string, logger zerolog.Logger) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		lockout:     lockout,
		ssoProtocol: ssoProtocol,
		logger:      logger,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (*model.SessionInfo, error) {
	var user *model.User

	decision, err := s.lockout.EvaluateAttempt(ctx, username, func(ctx context.Context) (bool, error) {
		u, err := s.authenticate(ctx, username, password)
		if err != nil {
			return false, err
		}
		user = u
		return u != nil && len(u.Permissions) > 0, nil
	})
	if err != nil {
		return nil, err
	}

	switch decision {
	case DecisionSuccess:
		signed, err := s.tokens.Generate(username)
		if err != nil {
			return nil, err
		}

		s.logger.Info().Str("username", username).Msg("login successful")
		loginSuccessTotal.Inc()

		return &model.SessionInfo{
			Token:             signed,
			Username:          username,
			Permissions:       user.Permissions,
			PwdExpirationDate: unixOrNil(user),
			SSO:               s.SSOEnabled(),
			PwdUpdateRequired: user.PwdUpdateRequired,
		}, nil

	case DecisionLockedOut:
		s.logger.Info().Str("username", username).Msg("login failed")
		accountLockoutsTotal.Inc()
		return nil, ErrInvalidCredentials

	default:
		s.logger.Info().Str("username", username).Msg("login failed")
		loginFailureTotal.Inc()
		return nil, ErrInvalidCredentials
	}
}

// Logout blacklists the presented token and returns where the client should
// navigate next. Blacklisting is idempotent, so repeated logouts succeed.
func (s *Service) Logout(ctx context.Context, rawToken string) (*model.LogoutResponse, error) {
	if err := s.tokens.Blacklist(ctx, rawToken); err != nil {
		return nil, err
	}

	s.logger.Debug().Msg("logout successful")

	redirectURL := "#/login"
	if s.SSOEnabled() {
		redirectURL = "auth/saml2/slo"
	}
	return &model.LogoutResponse{RedirectURL: redirectURL}, nil
}

// Check resolves a presented token to its session. A nil status (with nil
// error) means there is no live session and the caller should be prompted to
// log in; bad tokens are never an error here.
func (s *Service) Check(ctx context.Context, rawToken string) (*model.SessionStatus, error) {
	if rawToken == "" {
		return nil, nil
	}

	username, err := s.tokens.Validate(ctx, rawToken)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.Enabled {
		return nil, nil
	}

	return &model.SessionStatus{
		Username:          user.Username,
		Permissions:       user.Permissions,
		SSO:               s.SSOEnabled(),
		PwdUpdateRequired: user.PwdUpdateRequired,
	}, nil
}

func (s *Service) SSOEnabled() bool {
	return s.ssoProtocol == ssoSAML2
}

func (s *Service) LoginURL() string {
	if s.SSOEnabled() {
		return "auth/saml2/login"
	}
	return "#/login"
}

// authenticate verifies a username/password pair. It returns nil for unknown
// users, disabled accounts and wrong passwords without distinguishing them.
func (s *Service) authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, nil
		}
		return nil, err
	}

	if !user.Enabled {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	return user, nil
}

func unixOrNil(user *model.User) *int64 {
	if user.PwdExpirationDate == nil {
		return nil
	}
	ts := user.PwdExpirationDate.Unix()
	return &ts
}
