package dto

import "github.com/city-geo-service/internal/domain"

// CitiesResponse - список городов
type CitiesResponse struct {
	Cities []domain.City `json:"cities"`
}

// DistanceResponse - ответ на запрос расстояния
type DistanceResponse struct {
	From     domain.City `json:"from"`
	To       domain.City `json:"to"`
	Unit     string      `json:"unit"`
	Distance float64     `json:"distance"`
}

// AreaSubmitResponse - ответ на запуск поиска по радиусу
type AreaSubmitResponse struct {
	ResultsURL string `json:"resultsUrl"`
}

// AreaSubmitResult - результат use case: id созданной задачи
type AreaSubmitResult struct {
	JobID string
}

// AreaPollResult - состояние задачи для опроса.
// Ready == false означает, что сканирование еще не завершилось.
type AreaPollResult struct {
	Ready  bool
	Cities []domain.City
}
