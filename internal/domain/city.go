package domain

// Coordinate - точка на сфере в градусах
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// City - запись каталога городов. Не изменяется после загрузки каталога.
type City struct {
	GUID      string   `json:"guid" db:"guid"`
	Name      string   `json:"name,omitempty" db:"name"`
	Address   string   `json:"address,omitempty" db:"address"`
	Latitude  float64  `json:"latitude" db:"latitude"`
	Longitude float64  `json:"longitude" db:"longitude"`
	Tags      []string `json:"tags" db:"tags"`
	IsActive  bool     `json:"isActive" db:"is_active"`
}

// Coordinate возвращает координаты города
func (c City) Coordinate() Coordinate {
	return Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}

// HasTag проверяет наличие тега (регистр учитывается)
func (c City) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone возвращает копию с собственным срезом тегов
func (c City) Clone() City {
	if c.Tags != nil {
		tags := make([]string, len(c.Tags))
		copy(tags, c.Tags)
		c.Tags = tags
	}
	return c
}

// CityPredicate - условие фильтрации каталога
type CityPredicate func(City) bool

// WithTag - города, содержащие тег
func WithTag(tag string) CityPredicate {
	return func(c City) bool { return c.HasTag(tag) }
}

// Active - города с заданным статусом активности
func Active(active bool) CityPredicate {
	return func(c City) bool { return c.IsActive == active }
}

// All объединяет условия через логическое И
func All(preds ...CityPredicate) CityPredicate {
	return func(c City) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}
