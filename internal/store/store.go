// Package store is the persistence layer. Every listing endpoint goes
// through the same filter/pagination code path here so that scoping and
// ordering rules cannot drift between routes.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a uniqueness rule would be violated.
	ErrDuplicate = errors.New("store: duplicate")
)

type Store struct {
	conn   *sql.DB
	driver string
}

// Open connects to the database and runs migrations. Supported drivers are
// "mysql" and "sqlite".
func Open(driver, dsn string) (*Store, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; this also keeps :memory:
		// databases on one connection.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	var queries []string
	if s.driver == "mysql" {
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				password VARCHAR(255) NOT NULL,
				image VARCHAR(512),
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			) ENGINE=InnoDB;`,
			`CREATE TABLE IF NOT EXISTS categories (
				id INT AUTO_INCREMENT PRIMARY KEY,
				user_id INT NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				color VARCHAR(32),
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uniq_user_category (user_id, name),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			) ENGINE=InnoDB;`,
			`CREATE TABLE IF NOT EXISTS notes (
				id INT AUTO_INCREMENT PRIMARY KEY,
				user_id INT NOT NULL,
				category_id INT,
				title TEXT,
				content TEXT,
				is_public BOOLEAN DEFAULT FALSE,
				is_pinned BOOLEAN DEFAULT FALSE,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (category_id) REFERENCES categories(id)
			) ENGINE=InnoDB;`,
			`CREATE TABLE IF NOT EXISTS note_views (
				note_id INT PRIMARY KEY,
				count INT DEFAULT 0
			) ENGINE=InnoDB;`,
		}
	} else {
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password TEXT NOT NULL,
				image TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);`,
			`CREATE TABLE IF NOT EXISTS categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				description TEXT,
				color TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, name),
				FOREIGN KEY(user_id) REFERENCES users(id)
			);`,
			`CREATE TABLE IF NOT EXISTS notes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				category_id INTEGER,
				title TEXT,
				content TEXT,
				is_public BOOLEAN DEFAULT 0,
				is_pinned BOOLEAN DEFAULT 0,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY(user_id) REFERENCES users(id),
				FOREIGN KEY(category_id) REFERENCES categories(id)
			);`,
			`CREATE TABLE IF NOT EXISTS note_views (
				note_id INTEGER PRIMARY KEY,
				count INTEGER DEFAULT 0
			);`,
		}
	}

	for _, q := range queries {
		if _, err := s.conn.Exec(q); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}
