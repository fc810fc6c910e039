package http_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/config"
	delivery "github.com/city-geo-service/internal/delivery/http"
	"github.com/city-geo-service/internal/delivery/http/handler"
	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/repository/memory"
	"github.com/city-geo-service/internal/usecase"
)

const testToken = "dGhlc2VjcmV0dG9rZW4="

type testEnv struct {
	server *delivery.Server
	areaUC *usecase.AreaUseCase
}

func testCities() []domain.City {
	return []domain.City{
		{GUID: "ed354fef", Name: "Alpha", Latitude: 0, Longitude: 0, Tags: []string{"excepteur", "urna"}, IsActive: true},
		{GUID: "bf1dc1bd", Name: "Beta", Latitude: 0, Longitude: 1, Tags: []string{"excepteur"}, IsActive: false},
		{GUID: "c9f1a3ef", Name: "Gamma", Latitude: 0, Longitude: 10, Tags: []string{"urna"}, IsActive: true},
	}
}

func newTestEnv(t *testing.T, delay time.Duration, publicBaseURL string, health delivery.HealthFunc) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, PublicBaseURL: publicBaseURL},
		Auth:   config.AuthConfig{Token: testToken},
	}

	catalog := memory.NewCityCatalog(testCities(), logger)
	jobs := memory.NewAreaJobStore(memory.AreaJobStoreOptions{Retention: time.Hour}, logger)

	cityUC := usecase.NewCityUseCase(catalog, logger)
	areaUC := usecase.NewAreaUseCase(catalog, jobs, logger, delay)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = areaUC.Shutdown(ctx)
	})

	server := delivery.NewServer(
		cfg,
		logger,
		handler.NewCityHandler(cityUC, logger),
		handler.NewAreaHandler(areaUC, publicBaseURL, logger),
		health,
	)

	return &testEnv{server: server, areaUC: areaUC}
}

func (e *testEnv) do(t *testing.T, target string, authorized bool) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Error.Code
}

func cityGUIDs(t *testing.T, body []byte) []string {
	t.Helper()
	var payload struct {
		Cities []domain.City `json:"cities"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NotNil(t, payload.Cities)

	out := make([]string, 0, len(payload.Cities))
	for _, c := range payload.Cities {
		out = append(out, c.GUID)
	}
	return out
}

func TestServer_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	targets := []string{
		"/cities-by-tag?tag=excepteur&isActive=true",
		"/distance?from=ed354fef&to=bf1dc1bd",
		"/area?from=ed354fef&distance=100",
		"/area-result/whatever",
		"/all-cities",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			resp, body := env.do(t, target, false)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Empty(t, body)
		})
	}
}

func TestServer_AuthHeaderVariants(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + testToken, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + testToken, status: http.StatusOK},
		{name: "wrong token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic " + testToken, status: http.StatusUnauthorized},
		{name: "token without scheme", header: testToken, status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/distance?from=ed354fef&to=bf1dc1bd", nil)
			req.Header.Set("Authorization", tt.header)

			resp, err := env.server.App().Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServer_HealthWithoutAuth(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	resp, body := env.do(t, "/health", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"healthy"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_HealthUnhealthy(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", func(ctx context.Context) error {
		return stderrors.New("redis down")
	})

	resp, body := env.do(t, "/health", false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "redis down")
}

func TestServer_CitiesByTag(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{name: "active", target: "/cities-by-tag?tag=excepteur&isActive=true", expected: []string{"ed354fef"}},
		{name: "inactive", target: "/cities-by-tag?tag=excepteur&isActive=false", expected: []string{"bf1dc1bd"}},
		{name: "non-boolean status selects inactive", target: "/cities-by-tag?tag=urna&isActive=yes", expected: []string{}},
		{name: "no match", target: "/cities-by-tag?tag=missing&isActive=true", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, tt.target, true)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.expected, cityGUIDs(t, body))
		})
	}
}

func TestServer_CitiesByTagMissingTag(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	resp, body := env.do(t, "/cities-by-tag?isActive=true", true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
}

func TestServer_Distance(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	resp, body := env.do(t, "/distance?from=ed354fef&to=bf1dc1bd", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		From     domain.City `json:"from"`
		To       domain.City `json:"to"`
		Unit     string      `json:"unit"`
		Distance float64     `json:"distance"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ed354fef", payload.From.GUID)
	assert.Equal(t, "bf1dc1bd", payload.To.GUID)
	assert.Equal(t, "km", payload.Unit)
	assert.Equal(t, 111.19, payload.Distance)
}

func TestServer_DistanceUnknownCity(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	for _, target := range []string{"/distance?from=ed354fef&to=nope", "/distance?from=ed354fef"} {
		resp, body := env.do(t, target, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "CITY_NOT_FOUND", errorCode(t, body))
	}
}

func TestServer_AreaSubmitAndPoll(t *testing.T) {
	env := newTestEnv(t, 10*time.Millisecond, "", nil)

	resp, body := env.do(t, "/area?from=ed354fef&distance=250", true)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submit struct {
		ResultsURL string `json:"resultsUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &submit))
	require.True(t, strings.HasPrefix(submit.ResultsURL, "http://example.com/area-result/"), submit.ResultsURL)

	path := strings.TrimPrefix(submit.ResultsURL, "http://example.com")

	var result []byte
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		resp, err := env.server.App().Test(req, -1)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		result, err = io.ReadAll(resp.Body)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"bf1dc1bd"}, cityGUIDs(t, result))
}

func TestServer_AreaPendingHasEmptyBody(t *testing.T) {
	env := newTestEnv(t, time.Hour, "https://geo.example.com", nil)

	resp, body := env.do(t, "/area?from=ed354fef&distance=250", true)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var submit struct {
		ResultsURL string `json:"resultsUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &submit))
	require.True(t, strings.HasPrefix(submit.ResultsURL, "https://geo.example.com/area-result/"), submit.ResultsURL)

	resp, body = env.do(t, strings.TrimPrefix(submit.ResultsURL, "https://geo.example.com"), true)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Empty(t, body)
}

func TestServer_AreaFailedJob(t *testing.T) {
	env := newTestEnv(t, time.Hour, "https://geo.example.com", nil)

	_, body := env.do(t, "/area?from=ed354fef&distance=250", true)
	var submit struct {
		ResultsURL string `json:"resultsUrl"`
	}
	require.NoError(t, json.Unmarshal(body, &submit))

	require.NoError(t, env.areaUC.Shutdown(context.Background()))

	resp, body := env.do(t, strings.TrimPrefix(submit.ResultsURL, "https://geo.example.com"), true)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "JOB_FAILED", errorCode(t, body))

	resp, body = env.do(t, "/area?from=ed354fef&distance=250", true)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "SHUTTING_DOWN", errorCode(t, body))
}

func TestServer_AreaRejections(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{name: "unknown origin", target: "/area?from=nope&distance=10", status: http.StatusNotFound, code: "CITY_NOT_FOUND"},
		{name: "unknown origin with bad radius", target: "/area?from=nope&distance=abc", status: http.StatusNotFound, code: "CITY_NOT_FOUND"},
		{name: "negative radius", target: "/area?from=ed354fef&distance=-1", status: http.StatusBadRequest, code: "INVALID_RADIUS"},
		{name: "non-numeric radius", target: "/area?from=ed354fef&distance=abc", status: http.StatusBadRequest, code: "INVALID_RADIUS"},
		{name: "missing radius", target: "/area?from=ed354fef", status: http.StatusBadRequest, code: "INVALID_RADIUS"},
		{name: "infinite radius", target: "/area?from=ed354fef&distance=Inf", status: http.StatusBadRequest, code: "INVALID_RADIUS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, tt.target, true)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, body))
		})
	}
}

func TestServer_AreaResultUnknownJob(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	resp, body := env.do(t, "/area-result/does-not-exist", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "JOB_NOT_FOUND", errorCode(t, body))
}

func TestServer_AllCitiesExport(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	resp, body := env.do(t, "/all-cities", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var cities []domain.City
	require.NoError(t, json.Unmarshal(body, &cities))
	require.Len(t, cities, 3)
	assert.Equal(t, "ed354fef", cities[0].GUID)
	assert.Equal(t, "c9f1a3ef", cities[2].GUID)
}

func TestServer_UnknownRoute(t *testing.T) {
	env := newTestEnv(t, time.Hour, "", nil)

	resp, body := env.do(t, "/nope", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}
