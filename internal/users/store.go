package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleClinician = "clinician"
	RoleFamily    = "family"
	RoleAdmin     = "admin"
)

const bcryptCost = 12

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleClinician, RoleFamily, RoleAdmin:
		return true
	}
	return false
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Authenticate checks username/password and returns the user.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, role, password_hash FROM users WHERE username=$1`,
		strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.Role, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Upsert creates or updates a user by username. An empty password keeps the
// existing hash; new users must have one.
func (s *Store) Upsert(ctx context.Context, username, role, password string) (User, error) {
	out, err := s.UpsertMany(ctx, []Upsert{{Username: username, Role: role, Password: password}})
	if err != nil {
		return User{}, err
	}
	return out[0], nil
}

// Upsert is one row of a batch write.
type Upsert struct {
	Username string
	Role     string
	Password string
}

// UpsertMany applies every row in one transaction; any failure rolls back
// the whole batch.
func (s *Store) UpsertMany(ctx context.Context, rows []Upsert) (out []User, err error) {
	hashes := make([]string, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.Username) == "" {
			return nil, errors.New("username required")
		}
		if !ValidRole(r.Role) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, r.Role)
		}
		if r.Password != "" {
			if hashes[i], err = HashPassword(r.Password); err != nil {
				return nil, err
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	out = make([]User, 0, len(rows))
	for i, r := range rows {
		u, err := upsertTx(ctx, tx, strings.TrimSpace(r.Username), r.Role, hashes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// EnsureAdmin seeds the bootstrap admin with a precomputed bcrypt hash.
func (s *Store) EnsureAdmin(ctx context.Context, username, passHash string) error {
	if username == "" || passHash == "" {
		return nil
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, username).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = s.upsertHash(ctx, username, RoleAdmin, passHash)
	return err
}

func (s *Store) upsertHash(ctx context.Context, username, role, phash string) (u User, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return upsertTx(ctx, tx, username, role, phash)
}

func upsertTx(ctx context.Context, tx *sql.Tx, username, role, phash string) (User, error) {
	u := User{Username: username, Role: role}
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&u.ID)
	switch {
	case err == nil:
		if phash != "" {
			_, err = tx.ExecContext(ctx, `UPDATE users SET role=$1, password_hash=$2 WHERE id=$3`, role, phash, u.ID)
		} else {
			_, err = tx.ExecContext(ctx, `UPDATE users SET role=$1 WHERE id=$2`, role, u.ID)
		}
		if err != nil {
			return User{}, err
		}
		return u, nil
	case errors.Is(err, sql.ErrNoRows):
		if phash == "" {
			return User{}, errors.New("password required for new user: " + username)
		}
		u.ID = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, username, role, password_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
			u.ID, username, role, phash, time.Now().Unix())
		if err != nil {
			return User{}, err
		}
		return u, nil
	default:
		return User{}, err
	}
}

// RoleOf returns the stored role for a user id.
func (s *Store) RoleOf(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}

// ChangePassword verifies the old password before storing the new one.
func (s *Store) ChangePassword(ctx context.Context, userID, oldPw, newPw string) error {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(oldPw)) != nil {
		return ErrInvalidCredentials
	}
	h, err := HashPassword(newPw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, h, userID)
	return err
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, role FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
