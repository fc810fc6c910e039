package dto

// CitiesByTagRequest - фильтр каталога по тегу и статусу активности
type CitiesByTagRequest struct {
	Tag      string `json:"tag" validate:"required"`
	IsActive bool   `json:"isActive"`
}

// DistanceRequest - расстояние между двумя городами каталога
type DistanceRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// AreaRequest - запуск поиска городов в радиусе от города From
type AreaRequest struct {
	From     string  `json:"from"`
	Distance float64 `json:"distance" validate:"finite,min=0"` // km
}
