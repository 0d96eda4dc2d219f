package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"
	"github.com/planoraforstudents/PlanoraForStudents/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records outgoing mail instead of talking to SMTP. Set
// fail to exercise the dispatch-failure rollback paths
type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}

	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// fakeGenerator returns canned roadmap text
type fakeGenerator struct {
	text string
	fail bool
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	if f.fail {
		return "", errors.New("upstream unavailable")
	}

	return f.text, nil
}

func newTestAPI(t *testing.T) (*API, *fakeMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("otp.ttl", 10)
	viper.Set("otp.resend_cooldown", 60)
	viper.Set("cors.allowed_origins", []string{"http://localhost:5173"})

	// Tests hammer the auth endpoints from one IP, keep the limiter
	// out of the way
	viper.Set("rate.rps", 10000)
	viper.Set("rate.burst", 10000)

	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(
		model.User{},
		model.OneTimePasscode{},
		model.ResendRequest{},
		model.Task{},
		model.Event{},
		model.Roadmap{},
		model.RoadmapStep{},
		model.DailySummary{},
	))

	mailer := &fakeMailer{}

	a := &API{
		DB:        database,
		Argon:     security.NewArgon(),
		Tokens:    security.NewTokenIssuer("test-secret", time.Hour, 24*time.Hour),
		Mailer:    mailer,
		Generator: &fakeGenerator{text: "Learn the basics\nBuild a project\nShip it"},
	}

	a.setupRoutes()

	return a, mailer
}

func doJSON(t *testing.T, a *API, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}

func jsonDecode(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	return out
}

// latestCode reads the current usable code for an address straight
// from the ledger, standing in for the user reading their inbox
func latestCode(t *testing.T, a *API, email, purpose string) model.OneTimePasscode {
	t.Helper()

	var record model.OneTimePasscode
	err := a.DB.Where("email = ? AND purpose = ? AND used = ?", email, purpose, false).
		Order("created_at DESC, id DESC").
		First(&record).
		Error
	require.NoError(t, err)

	return record
}

// registerAndVerify walks an address through the happy registration
// path and returns the activated user
func registerAndVerify(t *testing.T, a *API, email, username, password string) model.User {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/users/register", gin.H{
		"email":    email,
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code := latestCode(t, a, email, model.PasscodePurposeRegister)

	w = doJSON(t, a, http.MethodPost, "/api/users/verify-otp", gin.H{
		"email": email,
		"otp":   code.Code,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user model.User
	require.NoError(t, a.DB.Where("email = ?", email).First(&user).Error)

	return user
}

// login returns an access token for an already-activated user
func login(t *testing.T, a *API, identifier, password string) string {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"identifier": identifier,
		"password":   password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	access, _ := body["access"].(string)
	require.NotEmpty(t, access)

	return access
}

// timeAgo returns a timestamp the given number of minutes in the past
func timeAgo(t *testing.T, minutes int) time.Time {
	t.Helper()
	return time.Now().Add(-time.Duration(minutes) * time.Minute)
}

// clearCooldown backdates the resend throttle so tests can request
// another code immediately
func clearCooldown(t *testing.T, a *API, email string) {
	t.Helper()

	require.NoError(t, a.DB.Model(model.ResendRequest{}).
		Where("email = ?", email).
		Update("last_resend", time.Now().Add(-time.Hour)).Error)
}
