package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/langinsight/internal/db"
	"github.com/mind-engage/langinsight/internal/users"
)

func openStore(t *testing.T) *users.Store {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return users.NewStore(dbh)
}

func TestUpsertAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	u, err := s.Upsert(ctx, "dr.lee", users.RoleClinician, "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	got, err := s.Authenticate(ctx, "dr.lee", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = s.Authenticate(ctx, "dr.lee", "wrong")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = s.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	// role change without password keeps the hash
	u2, err := s.Upsert(ctx, "dr.lee", users.RoleFamily, "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	got, err = s.Authenticate(ctx, "dr.lee", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, users.RoleFamily, got.Role)
	role, err := s.RoleOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, users.RoleFamily, role)
	_, err = s.RoleOf(ctx, "missing")
	assert.ErrorIs(t, err, users.ErrNotFound)

	_, err = s.Upsert(ctx, "new", users.RoleFamily, "")
	assert.Error(t, err)
	_, err = s.Upsert(ctx, "x", "therapist", "pw")
	assert.ErrorIs(t, err, users.ErrInvalidRole)
}

func TestEnsureAdminAndChangePassword(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("adminpw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.EnsureAdmin(ctx, "admin", string(hash)))
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "ignored-second-time"))

	admin, err := s.Authenticate(ctx, "admin", "adminpw")
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, admin.Role)

	assert.ErrorIs(t, s.ChangePassword(ctx, admin.ID, "bad", "next"), users.ErrInvalidCredentials)
	require.NoError(t, s.ChangePassword(ctx, admin.ID, "adminpw", "next"))
	_, err = s.Authenticate(ctx, "admin", "next")
	require.NoError(t, err)
	assert.ErrorIs(t, s.ChangePassword(ctx, "missing", "a", "b"), users.ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "admin", list[0].Username)
}

func TestUpsertManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.UpsertMany(ctx, []users.Upsert{
		{Username: "ok1", Role: users.RoleFamily, Password: "pw"},
		{Username: "bad", Role: "wizard", Password: "pw"},
	})
	assert.ErrorIs(t, err, users.ErrInvalidRole)

	// fails inside the transaction: new user without a password
	_, err = s.UpsertMany(ctx, []users.Upsert{
		{Username: "ok2", Role: users.RoleFamily, Password: "pw"},
		{Username: "nopw", Role: users.RoleFamily},
	})
	assert.Error(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	out, err := s.UpsertMany(ctx, []users.Upsert{
		{Username: "a", Role: users.RoleFamily, Password: "pw"},
		{Username: "b", Role: users.RoleClinician, Password: "pw"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
