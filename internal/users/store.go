package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	// Path is the database file.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Store persists users and their avatars in SQLite.
type Store struct {
	db        *sql.DB
	closeOnce sync.Once

	getStmt       *sql.Stmt
	getByNameStmt *sql.Stmt
	credsStmt     *sql.Stmt
	insertStmt    *sql.Stmt
	updateStmt    *sql.Stmt
	deleteStmt    *sql.Stmt
	countStmt     *sql.Stmt
	setAvatarStmt *sql.Stmt
	getAvatarStmt *sql.Stmt
}

// Open opens the store at path with default settings.
func Open(path string) (*Store, error) {
	return OpenWithConfig(StoreConfig{Path: path})
}

// OpenWithConfig opens the store and creates its schema.
func OpenWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_salt BLOB NOT NULL,
		password_hash BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS avatars (
		user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		content_type TEXT NOT NULL,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.getStmt, `SELECT id, username, email FROM users WHERE id = ?`},
		{&s.getByNameStmt, `SELECT id, username, email FROM users WHERE username = ?`},
		{&s.credsStmt, `SELECT password_salt, password_hash FROM users WHERE username = ?`},
		{&s.insertStmt, `INSERT INTO users (username, email, password_salt, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`},
		{&s.updateStmt, `UPDATE users SET email = ? WHERE id = ?`},
		{&s.deleteStmt, `DELETE FROM users WHERE id = ?`},
		{&s.countStmt, `SELECT COUNT(*) FROM users`},
		{&s.setAvatarStmt, `
			INSERT INTO avatars (user_id, content_type, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				content_type = excluded.content_type,
				data = excluded.data,
				updated_at = excluded.updated_at
		`},
		{&s.getAvatarStmt, `SELECT content_type, data FROM avatars WHERE user_id = ?`},
	}

	for _, st := range stmts {
		stmt, err := s.db.Prepare(st.query)
		if err != nil {
			return err
		}
		*st.dst = stmt
	}
	return nil
}

// Create inserts a user and returns it with its assigned ID.
func (s *Store) Create(ctx context.Context, username, email, password string) (User, error) {
	salt, hash, err := hashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.insertStmt.ExecContext(ctx, username, email, salt, hash, time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	return User{ID: id, Username: username, Email: email}, nil
}

// Get returns the user with id.
func (s *Store) Get(ctx context.Context, id int64) (User, error) {
	return scanUser(s.getStmt.QueryRowContext(ctx, id))
}

// GetByUsername returns the user named username.
func (s *Store) GetByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(s.getByNameStmt.QueryRowContext(ctx, username))
}

// UpdateEmail changes the email of user id.
func (s *Store) UpdateEmail(ctx context.Context, id int64, email string) (User, error) {
	res, err := s.updateStmt.ExecContext(ctx, email, id)
	if err != nil {
		return User{}, fmt.Errorf("failed to update user: %w", err)
	}
	if err := requireRow(res); err != nil {
		return User{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes user id and its avatar.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res)
}

// Count returns the number of users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.countStmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Authenticate reports whether password is correct for username. Unknown
// users are not an error.
func (s *Store) Authenticate(ctx context.Context, username, password string) (bool, error) {
	var salt, hash []byte
	err := s.credsStmt.QueryRowContext(ctx, username).Scan(&salt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load credentials: %w", err)
	}
	return verifyPassword(password, salt, hash), nil
}

// SetAvatar stores the avatar of user id, replacing any previous one.
func (s *Store) SetAvatar(ctx context.Context, id int64, data []byte, contentType string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if _, err := s.setAvatarStmt.ExecContext(ctx, id, contentType, data, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	return nil
}

// Avatar returns the avatar of user id and its content type.
func (s *Store) Avatar(ctx context.Context, id int64) ([]byte, string, error) {
	var contentType string
	var data []byte
	err := s.getAvatarStmt.QueryRowContext(ctx, id).Scan(&contentType, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load avatar: %w", err)
	}
	return data, contentType, nil
}

// Seed inserts users when the store is empty. It returns the number of users
// inserted.
func (s *Store) Seed(ctx context.Context, seed []SeedUser) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for _, u := range seed {
		if _, err := s.Create(ctx, u.Username, u.Email, u.Password); err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", u.Username, err)
		}
	}
	return len(seed), nil
}

// Close closes the statements and the database. It is safe to call more
// than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{
			s.getStmt, s.getByNameStmt, s.credsStmt, s.insertStmt, s.updateStmt,
			s.deleteStmt, s.countStmt, s.setAvatarStmt, s.getAvatarStmt,
		} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func requireRow(res sql.Result) error {
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
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
