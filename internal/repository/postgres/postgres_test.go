package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/city-geo-service/internal/config"
)

func TestCatalogDSN_ReadOnlySession(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5432, User: "geo", Password: "pw", DBName: "cities", SSLMode: "disable"}

	dsn := catalogDSN(cfg)

	assert.Contains(t, dsn, cfg.DSN())
	assert.Contains(t, dsn, "default_transaction_read_only=on")
	assert.Contains(t, dsn, "application_name=city-geo-service")
}
