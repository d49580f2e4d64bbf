package catalogstore

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore is the Store backed by the authoritative relational
// database (§6's Client/Pizza/Production schemas).
type PostgresStore struct {
	db *gorm.DB
}

// Connect opens a GORM connection, tunes the pool for the order agent's
// bursty-but-small query pattern, and verifies connectivity with a ping.
func Connect(databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	normalized := normalizeDatabaseURL(databaseURL)

	log.Printf("🔄 connecting to Postgres: %s", redact(normalized))

	db, err := gorm.Open(postgres.Open(normalized), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Postgres connected")
	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying *gorm.DB for tooling (e.g. the seed command)
// that needs direct write access beyond the Store interface's read paths.
func (s *PostgresStore) DB() *gorm.DB {
	return s.db
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) LoadClients(ctx context.Context) ([]ClientRow, error) {
	var rows []ClientRow
	err := s.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

func (s *PostgresStore) LoadPizzas(ctx context.Context) ([]PizzaRow, error) {
	var rows []PizzaRow
	err := s.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

func (s *PostgresStore) LoadStations(ctx context.Context) ([]StationRow, error) {
	var rows []StationRow
	err := s.db.WithContext(ctx).Order("\"Poste\" ASC").Find(&rows).Error
	return rows, err
}

func (s *PostgresStore) FindClient(ctx context.Context, id int) (ClientRow, bool, error) {
	var row ClientRow
	err := s.db.WithContext(ctx).Where(`"ID" = ?`, id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return ClientRow{}, false, nil
	}
	if err != nil {
		return ClientRow{}, false, err
	}
	return row, true, nil
}

func (s *PostgresStore) FindPizza(ctx context.Context, name, size string) (PizzaRow, bool, error) {
	var row PizzaRow
	err := s.db.WithContext(ctx).Where(`"Nom" = ? AND "Taille" = ?`, name, size).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return PizzaRow{}, false, nil
	}
	if err != nil {
		return PizzaRow{}, false, err
	}
	return row, true, nil
}

// normalizeDatabaseURL accepts both postgres:// and postgresql:// schemes —
// some hosting providers export the latter, GORM's driver expects the former.
func normalizeDatabaseURL(url string) string {
	if strings.HasPrefix(url, "postgresql://") {
		return strings.Replace(url, "postgresql://", "postgres://", 1)
	}
	return url
}

func redact(url string) string {
	idx := strings.Index(url, "@")
	scheme := strings.Index(url, "://")
	if idx > 0 && scheme > 0 && scheme < idx {
		return url[:scheme+3] + "***@" + url[idx+1:]
	}
	return url
}
