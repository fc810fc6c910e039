package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/domain/repository"
	"github.com/city-geo-service/internal/pkg/errors"
	"github.com/city-geo-service/internal/pkg/utils"
	"github.com/city-geo-service/internal/usecase/dto"
)

const distanceUnit = "km"

// CityUseCase - синхронные запросы к каталогу
type CityUseCase struct {
	cityRepo repository.CityRepository
	logger   *zap.Logger
}

// NewCityUseCase - создание нового CityUseCase
func NewCityUseCase(cityRepo repository.CityRepository, logger *zap.Logger) *CityUseCase {
	return &CityUseCase{
		cityRepo: cityRepo,
		logger:   logger,
	}
}

// CitiesByTag - города с тегом и заданным статусом активности
func (uc *CityUseCase) CitiesByTag(ctx context.Context, req dto.CitiesByTagRequest) (*dto.CitiesResponse, error) {
	cities := uc.cityRepo.Filter(domain.All(
		domain.WithTag(req.Tag),
		domain.Active(req.IsActive),
	))

	uc.logger.Debug("Cities filtered by tag",
		zap.String("tag", req.Tag),
		zap.Bool("is_active", req.IsActive),
		zap.Int("found", len(cities)))

	return &dto.CitiesResponse{Cities: cities}, nil
}

// Distance - расстояние по большому кругу между двумя городами, км с точностью 0.01
func (uc *CityUseCase) Distance(ctx context.Context, req dto.DistanceRequest) (*dto.DistanceResponse, error) {
	from, ok := uc.cityRepo.FindByGUID(req.From)
	if !ok {
		return nil, errors.ErrCityNotFound.WithDetails(map[string]interface{}{"guid": req.From})
	}
	to, ok := uc.cityRepo.FindByGUID(req.To)
	if !ok {
		return nil, errors.ErrCityNotFound.WithDetails(map[string]interface{}{"guid": req.To})
	}

	distance := utils.HaversineDistance(from.Coordinate(), to.Coordinate())

	return &dto.DistanceResponse{
		From:     *from,
		To:       *to,
		Unit:     distanceUnit,
		Distance: utils.RoundTo(distance, 2),
	}, nil
}

// AllCities - весь каталог в порядке загрузки, для выгрузки
func (uc *CityUseCase) AllCities(ctx context.Context) []domain.City {
	return uc.cityRepo.All()
}
