package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/collective-recitation/internal/model"
	"github.com/iliyamo/collective-recitation/internal/utils"
)

// UserRepo provides data access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// isDuplicate reports whether err is a MySQL duplicate-entry error
// (code 1062), i.e. a uniqueness constraint did its job.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a user and returns its ID.  Email and phone are
// nullable; the caller guarantees at least one is set and the phone
// is already normalized.  A uniqueness violation on either column
// yields ErrIdentityExists.
func (r *UserRepo) Create(ctx context.Context, name string, email, phone *string, password, preferredLanguage string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, preferred_language) VALUES (?,?,?,?,?)",
		name, email, phone, hash, preferredLanguage)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrIdentityExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id,name,email,phone,password_hash,preferred_language,is_admin,created_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.PreferredLanguage, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByPhone fetches a user by normalized phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", phone))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// IsAdmin reports whether the user exists and carries the admin flag.
// A missing user is simply not an admin.
func (r *UserRepo) IsAdmin(ctx context.Context, id uint64) (bool, error) {
	var admin bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT is_admin FROM users WHERE id=? LIMIT 1", id).Scan(&admin)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return admin, nil
}
