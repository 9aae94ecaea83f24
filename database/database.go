// Package database provides the MySQL-backed implementation of the
// storage.KV contract, kept behind STORAGE_BACKEND=mysql. The engine
// itself never sees MySQL; it only sees the contract.
package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"quickscan-service/config"
	"quickscan-service/storage"
)

var DB *sql.DB

func InitDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return cerr
		}
		return err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv_store (
		k VARCHAR(191) PRIMARY KEY,
		v LONGBLOB NOT NULL
	)`)
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			return cerr
		}
		return err
	}

	DB = db
	return nil
}

func CloseDB() {
	if DB != nil {
		err := DB.Close()
		if err != nil {
			return
		}
	}
}

// Store adapts the shared connection to the storage.KV contract.
type Store struct {
	db *sql.DB
}

func NewStore() *Store {
	return &Store{db: DB}
}

func (s *Store) Read(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT v FROM kv_store WHERE k = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", storage.ErrUnavailable, key, err)
	}
	return value, nil
}

func (s *Store) Write(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: write %q: %v", storage.ErrUnavailable, key, err)
	}
	return nil
}
