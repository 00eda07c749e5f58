package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finplan/internal/http/middleware"
	"github.com/MrJamesThe3rd/finplan/internal/logger"
)

var secret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func TestAuth(t *testing.T) {
	valid := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}

	type testCase struct {
		name        string
		header      func(t *testing.T) string
		wantStatus  int
		wantSubject string
	}

	tests := []testCase{
		{
			name:        "Valid",
			header:      func(t *testing.T) string { return "Bearer " + sign(t, jwt.SigningMethodHS256, secret, valid) },
			wantStatus:  http.StatusOK,
			wantSubject: "user-1",
		},
		{
			name:       "Missing",
			header:     func(*testing.T) string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "WrongScheme",
			header:     func(t *testing.T) string { return "Token " + sign(t, jwt.SigningMethodHS256, secret, valid) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "WrongSecret",
			header:     func(t *testing.T) string { return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "WrongAlgorithm",
			header:     func(t *testing.T) string { return "Bearer " + sign(t, jwt.SigningMethodHS512, secret, valid) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Expired",
			header: func(t *testing.T) string {
				return "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "NoExpiry",
			header: func(t *testing.T) string {
				return "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"sub": "user-1"})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "NoSubject",
			header: func(t *testing.T) string {
				return "Bearer " + sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string

			h := middleware.Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject = middleware.Subject(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header := tt.header(t); header != "" {
				req.Header.Set("Authorization", header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSubject, subject)
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	log := logger.NewJSON(&buf, "info")

	h := middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		log.Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/x", nil))

	out := buf.String()
	assert.Contains(t, out, `"message":"inside handler"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/api/v1/x"`)
}
