package server

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhilekh-app/backend/internal/auth"
	"github.com/abhilekh-app/backend/internal/records"
	"github.com/abhilekh-app/backend/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSigningSecret = "router-test-secret"

func newTestIssuer(clock func() time.Time) *auth.TokenIssuer {
	return auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(testSigningSecret),
		Issuer:        "abhilekh-auth",
		Audience:      "abhilekh-api",
		TokenTTL:      time.Hour,
		Clock:         clock,
	})
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "router.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&records.Record{}, &users.User{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	usersService, err := users.NewService(users.ServiceConfig{
		Database:   db,
		IDProvider: users.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to build users service: %v", err)
	}

	recordsService, err := records.NewService(records.ServiceConfig{
		Database:   db,
		IDProvider: records.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to build records service: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		TokenManager:   newTestIssuer(nil),
		UsersService:   usersService,
		RecordsService: recordsService,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}
