package repository

import "github.com/city-geo-service/internal/domain"

// CityRepository определяет доступ к каталогу городов (только чтение)
type CityRepository interface {
	// FindByGUID ищет город по guid
	FindByGUID(guid string) (*domain.City, bool)

	// Filter возвращает города, удовлетворяющие условию, в порядке каталога
	Filter(pred domain.CityPredicate) []domain.City

	// All возвращает весь каталог в порядке загрузки
	All() []domain.City

	// Len возвращает размер каталога
	Len() int
}
