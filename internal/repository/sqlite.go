package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const timeLayout = "2006-01-02T15:04:05"

type sqliteRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at path and runs pending migrations.
func OpenSQLite(path string) (*sqliteRepo, error) {
	if dir := filepath.Dir(path); path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteRepo{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (r *sqliteRepo) Close(_ context.Context) error {
	return r.db.Close()
}

func (r *sqliteRepo) stamp() string {
	return r.now().UTC().Format(timeLayout)
}

func formatTime(t model.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) model.Time {
	t, err := model.ParseTime(s)
	if err != nil {
		return model.Time{}
	}
	return t
}

type scanner interface {
	Scan(dest ...any) error
}

const userColumns = "id, email, first_name, last_name, password, admin, created_at, updated_at"

func scanUser(row scanner) (*model.User, error) {
	var (
		u                model.User
		created, updated string
	)
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Password, &u.Admin, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return &u, nil
}

func (r *sqliteRepo) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (r *sqliteRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (r *sqliteRepo) AddUser(ctx context.Context, user *model.User) error {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, first_name, last_name, password, admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.FirstName, user.LastName, user.Password, user.Admin, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	user.CreatedAt = parseTime(now)
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (r *sqliteRepo) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return expectRow(res)
}

const teacherColumns = "id, first_name, last_name, created_at, updated_at"

func scanTeacher(row scanner) (*model.Teacher, error) {
	var (
		t                model.Teacher
		created, updated string
	)
	err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func (r *sqliteRepo) GetTeachers(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+teacherColumns+" FROM teachers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying teachers: %w", err)
	}
	defer rows.Close()

	teachers := []model.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *t)
	}
	return teachers, rows.Err()
}

func (r *sqliteRepo) GetTeacher(ctx context.Context, id int64) (*model.Teacher, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+teacherColumns+" FROM teachers WHERE id = ?", id)
	return scanTeacher(row)
}

func (r *sqliteRepo) AddTeacher(ctx context.Context, teacher *model.Teacher) error {
	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO teachers (first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		teacher.FirstName, teacher.LastName, now, now)
	if err != nil {
		return fmt.Errorf("inserting teacher: %w", err)
	}
	if teacher.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	teacher.CreatedAt = parseTime(now)
	teacher.UpdatedAt = teacher.CreatedAt
	return nil
}

const sessionColumns = "id, name, description, date, teacher_id, created_at, updated_at"

func scanSession(row scanner) (*model.Session, error) {
	var (
		s                      model.Session
		date, created, updated string
	)
	err := row.Scan(&s.ID, &s.Name, &s.Description, &date, &s.TeacherID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Date = parseTime(date)
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	s.Users = []int64{}
	return &s, nil
}

func (r *sqliteRepo) GetSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+sessionColumns+" FROM sessions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}

	sessions := []model.Session{}
	index := map[int64]int{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, *s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.QueryContext(ctx, "SELECT session_id, user_id FROM participants ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var sid, uid int64
		if err := prows.Scan(&sid, &uid); err != nil {
			return nil, err
		}
		if i, ok := index[sid]; ok {
			sessions[i].Users = append(sessions[i].Users, uid)
		}
	}
	return sessions, prows.Err()
}

func (r *sqliteRepo) GetSession(ctx context.Context, id int64) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	s, err := scanSession(row)
	if err != nil {
		return nil, err
	}

	s.Users, err = r.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sqliteRepo) participants(ctx context.Context, sessionID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id FROM participants WHERE session_id = ? ORDER BY rowid", sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying participants: %w", err)
	}
	defer rows.Close()

	users := []int64{}
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		users = append(users, uid)
	}
	return users, rows.Err()
}

func (r *sqliteRepo) AddSession(ctx context.Context, session *model.Session) error {
	now := r.stamp()
	return r.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (name, description, date, teacher_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			session.Name, session.Description, formatTime(session.Date), session.TeacherID, now, now)
		if err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}
		if session.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		if session.Users == nil {
			session.Users = []int64{}
		}
		session.CreatedAt = parseTime(now)
		session.UpdatedAt = session.CreatedAt
		return insertParticipants(ctx, tx, session.ID, session.Users)
	})
}

// UpdateSession replaces every field except the creation time.
func (r *sqliteRepo) UpdateSession(ctx context.Context, session *model.Session) error {
	now := r.stamp()
	return r.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE sessions SET name = ?, description = ?, date = ?, teacher_id = ?, updated_at = ? WHERE id = ?",
			session.Name, session.Description, formatTime(session.Date), session.TeacherID, now, session.ID)
		if err != nil {
			return fmt.Errorf("updating session: %w", err)
		}
		if err := expectRow(res); err != nil {
			return err
		}

		var created string
		if err := tx.QueryRowContext(ctx, "SELECT created_at FROM sessions WHERE id = ?", session.ID).Scan(&created); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE session_id = ?", session.ID); err != nil {
			return fmt.Errorf("clearing participants: %w", err)
		}
		if session.Users == nil {
			session.Users = []int64{}
		}
		session.CreatedAt = parseTime(created)
		session.UpdatedAt = parseTime(now)
		return insertParticipants(ctx, tx, session.ID, session.Users)
	})
}

func (r *sqliteRepo) DeleteSession(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return expectRow(res)
}

func insertParticipants(ctx context.Context, tx *sql.Tx, sessionID int64, users []int64) error {
	for _, uid := range users {
		_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO participants (session_id, user_id) VALUES (?, ?)", sessionID, uid)
		if err != nil {
			return fmt.Errorf("inserting participant %d: %w", uid, err)
		}
	}
	return nil
}

func (r *sqliteRepo) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
