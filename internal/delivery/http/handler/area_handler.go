package handler

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/pkg/utils"
	"github.com/city-geo-service/internal/usecase"
	"github.com/city-geo-service/internal/usecase/dto"
)

// AreaHandler - асинхронный поиск городов в радиусе
type AreaHandler struct {
	areaUC        *usecase.AreaUseCase
	publicBaseURL string
	logger        *zap.Logger
}

// NewAreaHandler - создание нового AreaHandler.
// publicBaseURL используется для resultsUrl; если пустой, берется протокол и хост запроса.
func NewAreaHandler(areaUC *usecase.AreaUseCase, publicBaseURL string, logger *zap.Logger) *AreaHandler {
	return &AreaHandler{
		areaUC:        areaUC,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Submit godoc
// @Summary Запуск поиска городов в радиусе
// @Description Создает задачу поиска городов в радиусе distance км от города from и сразу возвращает ссылку для опроса результата.
// @Tags Area
// @Produce json
// @Param from query string true "GUID исходного города"
// @Param distance query number true "Радиус, км"
// @Success 202 {object} dto.AreaSubmitResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Failure 401 "Unauthorized"
// @Security BearerAuth
// @Router /area [get]
func (h *AreaHandler) Submit(c *fiber.Ctx) error {
	req := dto.AreaRequest{
		From:     c.Query("from"),
		Distance: parseDistance(c.Query("distance")),
	}

	result, err := h.areaUC.Submit(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusAccepted, dto.AreaSubmitResponse{
		ResultsURL: h.resultsURL(c, result.JobID),
	})
}

// Result godoc
// @Summary Результат поиска в радиусе
// @Description 200 с городами, когда поиск завершен. 202 без тела, пока задача выполняется.
// @Tags Area
// @Produce json
// @Param id path string true "ID задачи"
// @Success 200 {object} dto.CitiesResponse
// @Success 202 "Pending"
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Failure 401 "Unauthorized"
// @Security BearerAuth
// @Router /area-result/{id} [get]
func (h *AreaHandler) Result(c *fiber.Ctx) error {
	result, err := h.areaUC.Poll(c.Context(), c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	if !result.Ready {
		return utils.SendEmpty(c, fiber.StatusAccepted)
	}

	cities := result.Cities
	if cities == nil {
		cities = []domain.City{}
	}
	return utils.SendJSON(c, fiber.StatusOK, dto.CitiesResponse{Cities: cities})
}

func (h *AreaHandler) resultsURL(c *fiber.Ctx, jobID string) string {
	base := h.publicBaseURL
	if base == "" {
		base = c.Protocol() + "://" + c.Hostname()
	}
	return base + "/area-result/" + jobID
}

// parseDistance - нечисловое или пустое значение становится NaN,
// чтобы use case сначала проверил origin, а потом отклонил радиус.
func parseDistance(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
