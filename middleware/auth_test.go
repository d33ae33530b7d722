package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/hackmate/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, 7, userID)

		role, err := GetUserRoleFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, role)

		w.WriteHeader(http.StatusNoContent)
	})
	protected := Authenticate(testSecret)(next)

	t.Run("ValidToken", func(t *testing.T) {
		token := signedToken(t, testSecret, jwt.MapClaims{
			"user_id": 7,
			"role":    "user",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/requests", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signedToken(t, []byte("other-secret"), jwt.MapClaims{
			"user_id": 7,
			"role":    "user",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/requests", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := signedToken(t, testSecret, jwt.MapClaims{
			"user_id": 7,
			"role":    "user",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/requests", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := RequireAdmin(next)

	t.Run("AdminPasses", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/admin/hackathons/pending", nil)
		r = r.WithContext(WithUserClaims(r.Context(), 1, models.RoleAdmin))
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("RegularUserForbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/admin/hackathons/pending", nil)
		r = r.WithContext(WithUserClaims(r.Context(), 1, models.RoleUser))
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("NoClaimsForbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/hackathons/pending", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetUserIDFromContext(t *testing.T) {
	t.Run("RejectsNonIntegerID", func(t *testing.T) {
		ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
		_, err := GetUserIDFromContext(ctx)
		assert.Error(t, err)
	})

	t.Run("RejectsNonPositiveID", func(t *testing.T) {
		ctx := WithUserClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 0, models.RoleUser)
		_, err := GetUserIDFromContext(ctx)
		assert.Error(t, err)
	})
}
