package postgres

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (o Options) DSN() string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		o.Host, o.Port, o.User, o.Password, o.Name, sslMode,
	)
}

func New(opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres at %s:%d: %w", opts.Host, opts.Port, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
