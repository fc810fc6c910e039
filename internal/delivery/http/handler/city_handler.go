package handler

import (
	"bufio"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/pkg/errors"
	"github.com/city-geo-service/internal/pkg/utils"
	"github.com/city-geo-service/internal/pkg/validator"
	"github.com/city-geo-service/internal/usecase"
	"github.com/city-geo-service/internal/usecase/dto"
)

// CityHandler - синхронные запросы к каталогу городов
type CityHandler struct {
	cityUC *usecase.CityUseCase
	logger *zap.Logger
}

// NewCityHandler - создание нового CityHandler
func NewCityHandler(cityUC *usecase.CityUseCase, logger *zap.Logger) *CityHandler {
	return &CityHandler{
		cityUC: cityUC,
		logger: logger,
	}
}

// CitiesByTag godoc
// @Summary Города по тегу
// @Description Возвращает города с указанным тегом. isActive=true выбирает активные города, любое другое значение выбирает неактивные.
// @Tags Cities
// @Produce json
// @Param tag query string true "Тег"
// @Param isActive query string false "Статус активности (true|false)"
// @Success 200 {object} dto.CitiesResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 "Unauthorized"
// @Security BearerAuth
// @Router /cities-by-tag [get]
func (h *CityHandler) CitiesByTag(c *fiber.Ctx) error {
	req := dto.CitiesByTagRequest{
		Tag:      c.Query("tag"),
		IsActive: c.Query("isActive") == "true",
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"field": validator.FirstField(err),
		}))
	}

	result, err := h.cityUC.CitiesByTag(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// Distance godoc
// @Summary Расстояние между городами
// @Description Расстояние по большому кругу между двумя городами каталога, км с точностью до 0.01
// @Tags Cities
// @Produce json
// @Param from query string true "GUID первого города"
// @Param to query string true "GUID второго города"
// @Success 200 {object} dto.DistanceResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 401 "Unauthorized"
// @Security BearerAuth
// @Router /distance [get]
func (h *CityHandler) Distance(c *fiber.Ctx) error {
	req := dto.DistanceRequest{
		From: c.Query("from"),
		To:   c.Query("to"),
	}

	result, err := h.cityUC.Distance(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, result)
}

// AllCities godoc
// @Summary Выгрузка каталога
// @Description Весь каталог городов JSON-массивом в порядке загрузки. Ответ отдается потоком.
// @Tags Cities
// @Produce json
// @Success 200 {array} domain.City
// @Failure 401 "Unauthorized"
// @Security BearerAuth
// @Router /all-cities [get]
func (h *CityHandler) AllCities(c *fiber.Ctx) error {
	cities := h.cityUC.AllCities(c.Context())

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		enc := json.NewEncoder(w)

		_ = w.WriteByte('[')
		for i := range cities {
			if i > 0 {
				_ = w.WriteByte(',')
			}
			if err := enc.Encode(cities[i]); err != nil {
				h.logger.Error("Failed to encode city", zap.String("guid", cities[i].GUID), zap.Error(err))
				return
			}
			// Клиент отключился - дальше писать некуда
			if err := w.Flush(); err != nil {
				h.logger.Warn("Export stream interrupted", zap.Int("written", i), zap.Error(err))
				return
			}
		}
		_ = w.WriteByte(']')
		_ = w.Flush()

		h.logger.Debug("Catalog exported", zap.Int("count", len(cities)))
	})

	return nil
}
