package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/erancho/erancho-backend/internal/accounts"
	"github.com/erancho/erancho-backend/internal/audit"
	"github.com/erancho/erancho-backend/internal/people"
	"github.com/erancho/erancho-backend/internal/sectors"
	"github.com/erancho/erancho-backend/internal/testutil"
	pkgAuth "github.com/erancho/erancho-backend/pkg/auth"
	"github.com/erancho/erancho-backend/pkg/auth/session"
	"github.com/erancho/erancho-backend/pkg/config"
	"github.com/erancho/erancho-backend/pkg/enums"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]string
	tokens   map[string]string
	seq      int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]string{}, tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(ctx context.Context, accessID, cpf string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := "refresh-" + cpf + "-" + strconv.Itoa(f.seq)
	f.sessions[accessID] = cpf
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error) {
	f.mu.Lock()
	cpf, ok := f.sessions[oldAccessID]
	token := f.tokens[oldAccessID]
	f.mu.Unlock()
	if !ok || token != provided {
		return session.Rotation{}, session.ErrInvalidRefreshToken
	}
	next := session.NewAccessID()
	refresh, err := f.Generate(ctx, next, cpf)
	if err != nil {
		return session.Rotation{}, err
	}
	_ = f.Revoke(ctx, oldAccessID)
	return session.Rotation{AccessID: next, RefreshToken: refresh, CPF: cpf}, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, accessID)
	delete(f.tokens, accessID)
	return nil
}

type countingMetrics struct {
	outcomes []string
}

func (c *countingMetrics) IncLogin(outcome string) {
	c.outcomes = append(c.outcomes, outcome)
}

var jwtCfg = config.JWTConfig{Secret: "test-secret", Issuer: "erancho", ExpirationMinutes: 30}

type fixture struct {
	svc      Service
	accounts accounts.Service
	sessions *fakeSessions
	metrics  *countingMetrics
}

func newFixture(t *testing.T, withSessions bool) fixture {
	t.Helper()
	client := testutil.OpenDB(t)
	peopleRepo := people.NewRepository(client.DB())
	accountSvc, err := accounts.NewService(accounts.ServiceParams{
		People:  peopleRepo,
		Sectors: sectors.NewRepository(client.DB()),
		Tx:      client,
		Audit:   audit.NewService(audit.NewRepository(client.DB()), nil),
	})
	require.NoError(t, err)

	f := fixture{accounts: accountSvc, metrics: &countingMetrics{}}
	params := ServiceParams{
		Accounts:  accountSvc,
		People:    peopleRepo,
		JWTConfig: jwtCfg,
		Metrics:   f.metrics,
	}
	if withSessions {
		f.sessions = newFakeSessions()
		params.SessionManager = f.sessions
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func approve(t *testing.T, f fixture, cpf string) {
	t.Helper()
	_, err := f.accounts.Approve(context.Background(), pkgAuth.Principal{CPF: "root", Role: enums.RoleAdmGeral}, cpf, accounts.ApproveInput{
		Name:       "Carlos Souza",
		WarName:    "Cb Souza",
		Rank:       "Cabo",
		SectorName: "1ª Cia Fuz",
	})
	require.NoError(t, err)
}

func TestLoginPendingAccountGetsNoTokens(t *testing.T) {
	f := newFixture(t, true)

	resp, err := f.svc.Login(context.Background(), LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)
	assert.True(t, resp.Registered)
	assert.Equal(t, enums.AccountStatusPending, resp.Person.Status)
	assert.Empty(t, resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
	assert.Equal(t, []string{"pending"}, f.metrics.outcomes)
}

func TestLoginApprovedAccountGetsTokens(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)
	approve(t, f, "222")

	resp, err := f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)
	assert.False(t, resp.Registered)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(jwtCfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "222", claims.CPF())
	assert.Equal(t, enums.RoleMilitar, claims.Role)
	assert.Equal(t, resp.Person.SectorID, claims.SectorID)

	_, err = f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "0000"})
	assert.True(t, errors.Is(err, accounts.ErrDenied))
	assert.Equal(t, []string{"pending", "approved", "denied"}, f.metrics.outcomes)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)
	approve(t, f, "222")
	login, err := f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, login.AccessToken, "wrong")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))

	pair, err := f.svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	_, err = f.svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))

	require.NoError(t, f.svc.Logout(ctx, pair.AccessToken))
	_, err = f.svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))

	err = f.svc.Logout(ctx, "garbage")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeUnauthorized))
}

func TestWithoutSessionsLoginStillMintsAccessToken(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)
	approve(t, f, "222")

	resp, err := f.svc.Login(ctx, LoginRequest{CPF: "222", Pin: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)

	_, err = f.svc.Refresh(ctx, resp.AccessToken, "anything")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	assert.NoError(t, f.svc.Logout(ctx, resp.AccessToken))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
