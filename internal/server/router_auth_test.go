package server

import (
	"bytes"
	contextpkg "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abhilekh-app/backend/internal/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSignUpAndSignInFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(t)

	signupBody := []byte(`{"email":"user@example.com","password":"s3cret"}`)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(signupBody))
	request.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("unexpected signup status: got %d, want %d", recorder.Code, http.StatusCreated)
	}

	// Signup does not hand out a token; the caller signs in separately.
	var signupResponse map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &signupResponse); err != nil {
		t.Fatalf("failed to decode signup response: %v", err)
	}
	if _, hasToken := signupResponse["token"]; hasToken {
		t.Fatalf("signup response must not contain a token")
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/api/auth/signin", bytes.NewReader(signupBody))
	request.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected signin status: got %d, want %d", recorder.Code, http.StatusOK)
	}
	var signinResponse struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &signinResponse); err != nil {
		t.Fatalf("failed to decode signin response: %v", err)
	}
	if signinResponse.Token == "" {
		t.Fatalf("expected a bearer token")
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(t)

	body := []byte(`{"email":"user@example.com","password":"s3cret"}`)
	for _, wantStatus := range []int{http.StatusCreated, http.StatusBadRequest} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(recorder, request)
		if recorder.Code != wantStatus {
			t.Fatalf("unexpected signup status: got %d, want %d", recorder.Code, wantStatus)
		}
	}
}

func TestSignUpRequiresEmailAndPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(t)

	for _, body := range []string{`{}`, `{"email":"user@example.com"}`, `{"password":"s3cret"}`} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte(body)))
		request.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("body %s: unexpected status %d, want %d", body, recorder.Code, http.StatusBadRequest)
		}
	}
}

func TestSignInFailuresShareOneResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestHandler(t)

	signupBody := []byte(`{"email":"user@example.com","password":"correct"}`)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(signupBody))
	request.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("unexpected signup status: %d", recorder.Code)
	}

	responses := make([]string, 0, 2)
	for _, body := range []string{
		`{"email":"user@example.com","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"correct"}`,
	} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/auth/signin", bytes.NewReader([]byte(body)))
		request.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(recorder, request)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: unexpected status %d, want %d", body, recorder.Code, http.StatusUnauthorized)
		}
		responses = append(responses, recorder.Body.String())
	}

	if responses[0] != responses[1] {
		t.Fatalf("wrong-password and unknown-email responses differ: %q vs %q", responses[0], responses[1])
	}
}

func TestAuthorizeRequestLogsExpiredTokenAtInfoLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	request := httptest.NewRequest(http.MethodGet, "/api/records", http.NoBody)
	request.Header.Set("Authorization", "Bearer expired-token")
	ctx.Request = request

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	handler := &httpHandler{
		tokens: stubTokenManager{
			validateErr: auth.ErrExpiredToken,
		},
		logger: logger,
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: got %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.InfoLevel {
		t.Fatalf("expected info level for expired token, got %s", entry.Level)
	}
	if entry.Message != "token validation failed" {
		t.Fatalf("unexpected log message: %q", entry.Message)
	}
}

func TestAuthorizeRequestLogsUnexpectedTokenErrorAtWarnLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	request := httptest.NewRequest(http.MethodGet, "/api/records", http.NoBody)
	request.Header.Set("Authorization", "Bearer invalid-token")
	ctx.Request = request

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	handler := &httpHandler{
		tokens: stubTokenManager{
			validateErr: errors.New("signature mismatch"),
		},
		logger: logger,
	}

	handler.authorizeRequest(ctx)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: got %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for unexpected error, got %s", entry.Level)
	}
}

type stubTokenManager struct {
	validateErr error
}

func (s stubTokenManager) IssueToken(contextpkg.Context, string, string) (string, int64, error) {
	return "", 0, errors.New("not implemented")
}

func (s stubTokenManager) ValidateToken(string) (auth.Claims, error) {
	return auth.Claims{}, s.validateErr
}
