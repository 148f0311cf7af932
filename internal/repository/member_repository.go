package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
)

// MemberRepo persists members in the 'members' table. Timestamps are
// written explicitly on every mutation so the store never depends on
// implicit auditing.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

const memberColumns = "id, email, password_hash, name, phone, role, status, last_login_at, created_at, updated_at"

// Create inserts a member and fills in its generated ID.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO members (email, password_hash, name, phone, role, status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		m.Email, m.PasswordHash, m.Name, nullString(m.Phone), string(m.Role), string(m.Status), now, now)
	if err != nil {
		if isDuplicateKey(err) {
			return errs.DuplicateEmail
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE email=? LIMIT 1", email)
	return scanMember(row)
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id=? LIMIT 1", id)
	return scanMember(row)
}

// ExistsByEmail reports whether a member with the email exists.
func (r *MemberRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM members WHERE email=? LIMIT 1", email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TouchLastLogin records a successful login.
func (r *MemberRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE members SET last_login_at=?, updated_at=? WHERE id=?",
		at.UTC(), time.Now().UTC(), id)
	return err
}

func scanMember(row *sql.Row) (*model.Member, error) {
	var (
		m         model.Member
		phone     sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Name, &phone,
		(*string)(&m.Role), (*string)(&m.Status), &lastLogin, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.MemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		m.Phone = phone.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		m.LastLoginAt = &t
	}
	return &m, nil
}

// isDuplicateKey reports MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
