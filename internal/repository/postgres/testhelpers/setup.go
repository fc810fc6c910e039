package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
)

// TestDB represents a test database connection
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

const citiesSchema = `
CREATE TABLE IF NOT EXISTS cities (
	id         BIGSERIAL PRIMARY KEY,
	guid       TEXT NOT NULL UNIQUE,
	name       TEXT,
	address    TEXT,
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	tags       TEXT[],
	is_active  BOOLEAN NOT NULL DEFAULT FALSE
)`

// SetupTestDB подключается к тестовой БД; если она недоступна, тест пропускается
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	host := getEnv("TEST_DB_HOST", "localhost")
	port := getEnv("TEST_DB_PORT", "5433")
	user := getEnv("TEST_DB_USER", "postgres")
	password := getEnv("TEST_DB_PASSWORD", "postgres")
	dbname := getEnv("TEST_DB_NAME", "cities_test")
	sslmode := getEnv("TEST_DB_SSLMODE", "disable")

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=2",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		t.Skipf("PostgreSQL not available for integration tests: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, citiesSchema); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to create cities schema: %v", err)
	}

	return &TestDB{
		DB:     db,
		Logger: zap.NewNop(),
	}
}

// InsertCities вставляет фикстуры в порядке среза
func (tdb *TestDB) InsertCities(ctx context.Context, cities []domain.City) error {
	for _, c := range cities {
		_, err := tdb.DB.ExecContext(ctx,
			`INSERT INTO cities (guid, name, address, latitude, longitude, tags, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.GUID, c.Name, c.Address, c.Latitude, c.Longitude, pq.Array(c.Tags), c.IsActive,
		)
		if err != nil {
			return fmt.Errorf("insert city %s: %w", c.GUID, err)
		}
	}
	return nil
}

// Close closes the database connection
func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		tdb.DB.Close()
	}
}

// Cleanup cleans up test data
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	_, err := tdb.DB.ExecContext(ctx, "TRUNCATE TABLE cities RESTART IDENTITY")
	return err
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
