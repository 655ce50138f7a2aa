package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	assert.True(t, c.Has("clinician", "report:clinician"))
	assert.True(t, c.Has("clinician", "dataset:upload"))
	assert.True(t, c.Has("family", "report:export"))
	assert.False(t, c.Has("family", "report:clinician"))
	assert.False(t, c.Has("family", "dataset:upload"))
	assert.True(t, c.Has("admin", "anything:at-all"))
	assert.False(t, c.Has("guest", "student:list"))
	assert.True(t, c.Any("family", "dataset:upload", "recent:view"))
}

func TestCan(t *testing.T) {
	assert.False(t, Can(context.Background(), "student:list"))
	ctx := WithRole(context.Background(), "family")
	assert.True(t, Can(ctx, "student:list"))
	assert.False(t, Can(ctx, "report:clinician"))
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("dataset:upload")(ok)

	for role, want := range map[string]int{
		"":          http.StatusForbidden,
		"family":    http.StatusForbidden,
		"clinician": http.StatusNoContent,
		"admin":     http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/datasets", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}
