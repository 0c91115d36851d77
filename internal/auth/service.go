package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erancho/erancho-backend/internal/accounts"
	"github.com/erancho/erancho-backend/internal/people"
	pkgAuth "github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/auth/session"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/db"
	"github.com/erancho/erancho-backend/pkg/db/models"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

type accountAuthenticator interface {
	RegisterOrAuthenticate(ctx context.Context, cpf, pin string) (*accounts.Outcome, error)
}

type personReader interface {
	FindByCPF(ctx context.Context, cpf string) (*models.Person, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID, cpf string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error)
	Revoke(ctx context.Context, accessID string) error
}

type loginRecorder interface {
	IncLogin(outcome string)
}

// ServiceParams bundles the dependencies required to build an auth service.
// SessionManager is optional; without it logins carry no refresh token.
type ServiceParams struct {
	Accounts       accountAuthenticator
	People         personReader
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Metrics        loginRecorder
	Now            func() time.Time
}

type service struct {
	accounts accountAuthenticator
	people   personReader
	session  sessionManager
	jwtCfg   config.JWTConfig
	metrics  loginRecorder
	now      func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account service is required")
	}
	if params.People == nil {
		return nil, fmt.Errorf("people repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		accounts: params.Accounts,
		people:   params.People,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

// Login registers unknown CPFs as pending and authenticates known ones. Only
// approved accounts receive tokens.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	outcome, err := s.accounts.RegisterOrAuthenticate(ctx, req.CPF, req.Pin)
	if err != nil {
		if errors.Is(err, accounts.ErrDenied) {
			s.recordLogin("denied")
		}
		return nil, err
	}

	resp := &LoginResponse{Person: outcome.Person, Registered: outcome.Registered}
	if outcome.Person.Status != enums.AccountStatusApproved {
		s.recordLogin("pending")
		return resp, nil
	}

	access, refresh, err := s.issueTokens(ctx, outcome.Person)
	if err != nil {
		return nil, err
	}
	resp.AccessToken = access
	resp.RefreshToken = refresh
	s.recordLogin("approved")
	return resp, nil
}

// Refresh rotates the refresh token bound to the presented access token and
// mints a new access token from the person's current state.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if s.session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions are disabled")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	rotation, err := s.session.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	person, err := s.people.FindByCPF(ctx, rotation.CPF)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load person")
	}
	if person.Status != enums.AccountStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	access, err := s.mint(people.FromModel(person), rotation.AccessID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: rotation.RefreshToken}, nil
}

// Logout revokes the refresh mapping tied to the presented access token.
func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if s.session == nil {
		return nil
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, person *people.PersonDTO) (string, string, error) {
	accessID := session.NewAccessID()
	access, err := s.mint(person, accessID)
	if err != nil {
		return "", "", err
	}
	if s.session == nil {
		return access, "", nil
	}
	refresh, err := s.session.Generate(ctx, accessID, person.CPF)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return access, refresh, nil
}

func (s *service) mint(person *people.PersonDTO, accessID string) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		CPF:      person.CPF,
		Role:     person.Role,
		SectorID: person.SectorID,
		JTI:      accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func (s *service) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.IncLogin(outcome)
	}
}
