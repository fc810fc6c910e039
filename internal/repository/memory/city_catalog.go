package memory

import (
	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/domain/repository"
	"go.uber.org/zap"
)

// CityCatalog - неизменяемый каталог городов в памяти.
// Безопасен для конкурентного чтения: после NewCityCatalog состояние не меняется.
type CityCatalog struct {
	cities []domain.City
	byGUID map[string]int
}

var _ repository.CityRepository = (*CityCatalog)(nil)

// NewCityCatalog строит каталог. Дубликаты guid пропускаются, побеждает первая запись.
func NewCityCatalog(cities []domain.City, logger *zap.Logger) *CityCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := &CityCatalog{
		cities: make([]domain.City, 0, len(cities)),
		byGUID: make(map[string]int, len(cities)),
	}

	for _, c := range cities {
		if _, exists := catalog.byGUID[c.GUID]; exists {
			logger.Warn("Duplicate city guid skipped", zap.String("guid", c.GUID))
			continue
		}
		catalog.byGUID[c.GUID] = len(catalog.cities)
		catalog.cities = append(catalog.cities, c.Clone())
	}

	return catalog
}

func (c *CityCatalog) FindByGUID(guid string) (*domain.City, bool) {
	idx, ok := c.byGUID[guid]
	if !ok {
		return nil, false
	}
	city := c.cities[idx].Clone()
	return &city, true
}

func (c *CityCatalog) Filter(pred domain.CityPredicate) []domain.City {
	result := make([]domain.City, 0)
	for _, city := range c.cities {
		if pred(city) {
			result = append(result, city.Clone())
		}
	}
	return result
}

func (c *CityCatalog) All() []domain.City {
	result := make([]domain.City, len(c.cities))
	for i, city := range c.cities {
		result[i] = city.Clone()
	}
	return result
}

func (c *CityCatalog) Len() int {
	return len(c.cities)
}
