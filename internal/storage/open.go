// Package storage picks the repository backend named by STORE_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"alx_travel/internal/domain"
	"alx_travel/internal/shared"
	"alx_travel/internal/storage/memory"
	mysqlrepo "alx_travel/internal/storage/mysql"
)

// Store exposes one repository per entity over a single backend.
type Store interface {
	Listings() domain.ListingRepository
	Bookings() domain.BookingRepository
	Reviews() domain.ReviewRepository
}

// Open connects the configured backend. The returned close func is never nil
// when err is nil.
func Open(ctx context.Context, cfg shared.Config) (Store, func() error, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), func() error { return nil }, nil
	case "mysql", "":
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Msg("database connection ok")

	if cfg.AutoMigrate {
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("migrations applied")
	}
	return mysqlrepo.New(db), db.Close, nil
}
