package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/city-geo-service/internal/pkg/utils"
)

const bearerScheme = "bearer"

// BearerAuth пропускает запрос дальше только с заголовком
// "Authorization: Bearer <token>". Иначе 401 без тела.
func BearerAuth(token string) fiber.Handler {
	expected := []byte(token)

	return func(c *fiber.Ctx) error {
		got, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			return utils.SendEmpty(c, fiber.StatusUnauthorized)
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
