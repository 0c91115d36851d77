package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erancho/erancho-backend/internal/auth"
	"github.com/erancho/erancho-backend/internal/people"
	pkgerrors "github.com/erancho/erancho-backend/pkg/errors"
	"github.com/erancho/erancho-backend/pkg/logger"
	"github.com/erancho/erancho-backend/pkg/types"
)

type stubAuthService struct {
	login      *auth.LoginResponse
	pair       *auth.TokenPair
	err        error
	gotAccess  string
	gotRefresh string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	s.gotAccess, s.gotRefresh = accessToken, refreshToken
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.gotAccess = accessToken
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestAuthLoginRegisteredReturnsCreated(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		Person:     &people.PersonDTO{CPF: "999"},
		Registered: true,
	}}
	resp := postJSON(t, AuthLogin(svc, logger.Discard()), `{"cpf":"999","pin":"1234"}`, nil)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if got := resp.Header().Get(accessTokenHeader); got != "" {
		t.Fatalf("pending account must not receive a token, got %q", got)
	}
}

func TestAuthLoginApprovedSetsAccessHeader(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		Person:       &people.PersonDTO{CPF: "111"},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}}
	resp := postJSON(t, AuthLogin(svc, logger.Discard()), `{"cpf":"111","pin":"1234"}`, nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get(accessTokenHeader); got != "access-token" {
		t.Fatalf("unexpected access header %q", got)
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh-token" || envelope.Data.Person.CPF != "111" {
		t.Fatalf("unexpected body %+v", envelope.Data)
	}
}

func TestAuthLoginRejectsMissingPin(t *testing.T) {
	resp := postJSON(t, AuthLogin(&stubAuthService{}, logger.Discard()), `{"cpf":"111"}`, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestAuthLoginWrongPin(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	resp := postJSON(t, AuthLogin(svc, logger.Discard()), `{"cpf":"111","pin":"0000"}`, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthLoginNilService(t *testing.T) {
	resp := postJSON(t, AuthLogin(nil, logger.Discard()), `{"cpf":"111","pin":"1234"}`, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	resp := postJSON(t, AuthRefresh(&stubAuthService{}, logger.Discard()), `{"refresh_token":"r"}`, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRefreshPassesBothTokens(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	resp := postJSON(t, AuthRefresh(svc, logger.Discard()), `{"refresh_token":"old-refresh"}`,
		map[string]string{"Authorization": "Bearer old-access"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.gotAccess != "old-access" || svc.gotRefresh != "old-refresh" {
		t.Fatalf("unexpected tokens forwarded: %q %q", svc.gotAccess, svc.gotRefresh)
	}
	if got := resp.Header().Get(accessTokenHeader); got != "new-access" {
		t.Fatalf("unexpected access header %q", got)
	}
}

func TestAuthLogoutRevokesPresentedToken(t *testing.T) {
	svc := &stubAuthService{}
	resp := postJSON(t, AuthLogout(svc, logger.Discard()), ``, map[string]string{"Authorization": "Bearer tok"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.gotAccess != "tok" {
		t.Fatalf("expected token forwarded, got %q", svc.gotAccess)
	}
}
