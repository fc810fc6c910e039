package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/pkg/utils"
	"github.com/city-geo-service/internal/repository/memory"
)

// Source - источник записей каталога, читается один раз при старте
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domain.City, error)
}

// Load читает источник и строит каталог. Ошибка источника логируется,
// каталог при этом остается пустым: поиски просто ничего не находят.
func Load(ctx context.Context, src Source, logger *zap.Logger) *memory.CityCatalog {
	cities, err := src.Load(ctx)
	if err != nil {
		logger.Error("Failed to load city catalog, starting with empty catalog",
			zap.String("source", src.Name()),
			zap.Error(err))
		return memory.NewCityCatalog(nil, logger)
	}

	valid := Sanitize(cities, logger)
	catalog := memory.NewCityCatalog(valid, logger)

	logger.Info("City catalog loaded",
		zap.String("source", src.Name()),
		zap.Int("cities", catalog.Len()),
		zap.Int("skipped", len(cities)-len(valid)))

	return catalog
}

// Sanitize отбрасывает записи без guid и с координатами вне диапазона
func Sanitize(cities []domain.City, logger *zap.Logger) []domain.City {
	valid := make([]domain.City, 0, len(cities))
	for i, c := range cities {
		if err := check(c); err != nil {
			logger.Warn("Invalid city record skipped",
				zap.Int("index", i),
				zap.String("guid", c.GUID),
				zap.Error(err))
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

func check(c domain.City) error {
	if c.GUID == "" {
		return fmt.Errorf("empty guid")
	}
	if !utils.ValidateCoordinates(c.Latitude, c.Longitude) {
		return fmt.Errorf("coordinates out of range: %f,%f", c.Latitude, c.Longitude)
	}
	return nil
}
