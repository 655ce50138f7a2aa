package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/langinsight/internal/rbac"
	"github.com/mind-engage/langinsight/internal/users"
)

type fakeUsers map[string]users.User // password -> user

func (f fakeUsers) Authenticate(_ context.Context, username, password string) (users.User, error) {
	u, ok := f[password]
	if !ok || u.Username != username {
		return users.User{}, users.ErrInvalidCredentials
	}
	return u, nil
}

func TestLoginAndMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	store := fakeUsers{"pw": {ID: "u-1", Username: "dr.lee", Role: users.RoleClinician}}

	rec := httptest.NewRecorder()
	LoginHandler(a, store).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"dr.lee","password":"pw"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out["access_token"])
	assert.Equal(t, users.RoleClinician, out["role"])

	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("Authorization", "Bearer "+out["access_token"])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", gotSub)
	assert.Equal(t, users.RoleClinician, gotRole)
}

func TestLoginRejects(t *testing.T) {
	a := NewAuthService("test-secret")
	store := fakeUsers{}

	rec := httptest.NewRecorder()
	LoginHandler(a, store).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	LoginHandler(a, store).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"x","password":"y"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejects(t *testing.T) {
	a := NewAuthService("test-secret")
	other := NewAuthService("other-secret")
	forged, err := other.IssueJWT("u-1", "admin")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	for _, hdr := range []string{"", "Token abc", "Bearer " + forged, "Bearer " + none} {
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		if hdr != "" {
			req.Header.Set("Authorization", hdr)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, hdr)
	}
}

type fakeRoles map[string]string

func (f fakeRoles) RoleOf(_ context.Context, id string) (string, error) {
	if id == "broken" {
		return "", errors.New("db down")
	}
	r, ok := f[id]
	if !ok {
		return "", users.ErrNotFound
	}
	return r, nil
}

func TestAttachRoleFromDB(t *testing.T) {
	roles := fakeRoles{"u-1": users.RoleFamily}
	cases := []struct {
		sub, claim string
		fallback   bool
		wantCode   int
		wantRole   string
	}{
		{"u-1", "clinician", false, http.StatusOK, "family"},
		{"gone", "clinician", true, http.StatusForbidden, ""},
		{"broken", "clinician", true, http.StatusOK, "clinician"},
		{"broken", "clinician", false, http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		var got string
		h := AttachRoleFromDB(roles, tc.fallback)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = rbac.RoleFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		req = req.WithContext(rbac.WithRole(WithSubject(req.Context(), tc.sub), tc.claim))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.wantCode, rec.Code, tc.sub)
		assert.Equal(t, tc.wantRole, got, tc.sub)
	}
}
