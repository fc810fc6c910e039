package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/city-geo-service/internal/domain"
)

const selectCitiesQuery = `
	SELECT guid, COALESCE(name, '') AS name, COALESCE(address, '') AS address,
	       latitude, longitude, COALESCE(tags, '{}') AS tags, is_active
	FROM cities
	ORDER BY id`

// cityRow - строка таблицы cities; tags хранится как text[]
type cityRow struct {
	GUID      string         `db:"guid"`
	Name      string         `db:"name"`
	Address   string         `db:"address"`
	Latitude  float64        `db:"latitude"`
	Longitude float64        `db:"longitude"`
	Tags      pq.StringArray `db:"tags"`
	IsActive  bool           `db:"is_active"`
}

// CitySource - источник каталога из таблицы cities
type CitySource struct {
	db *DB
}

func NewCitySource(db *DB) *CitySource {
	return &CitySource{db: db}
}

func (s *CitySource) Name() string {
	return "postgres:cities"
}

func (s *CitySource) Load(ctx context.Context) ([]domain.City, error) {
	var rows []cityRow
	if err := s.db.SelectContext(ctx, &rows, selectCitiesQuery); err != nil {
		return nil, fmt.Errorf("select cities: %w", err)
	}

	cities := make([]domain.City, 0, len(rows))
	for _, r := range rows {
		cities = append(cities, domain.City{
			GUID:      r.GUID,
			Name:      r.Name,
			Address:   r.Address,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Tags:      []string(r.Tags),
			IsActive:  r.IsActive,
		})
	}

	return cities, nil
}
