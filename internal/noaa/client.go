// Package noaa реализует клиент службы приливных прогнозов NOAA CO-OPS.
// Запрашиваются экстремумы (high/low) по станции за диапазон дат,
// в футах относительно датума MLLW, в локальном времени станции.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/magabrotheeeer/flood-alert/internal/config"
	"github.com/magabrotheeeer/flood-alert/internal/models"
)

// предиктивное время в ответе NOAA, локальное время станции без зоны
const predictionTimeLayout = "2006-01-02 15:04"

// Client клиент API NOAA datagetter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient создает новый клиент NOAA с таймаутом из конфига.
func NewClient(cfg config.NOAA, log *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.NOAABaseURL,
		httpClient: &http.Client{
			Timeout: cfg.NOAATimeout,
		},
		log: log,
	}
}

// FetchPredictions возвращает прогнозы приливов станции за [beginDate, endDate].
// Записи без классификации high/low возвращаются с пустым TideType,
// их отбрасывает слой загрузки.
func (c *Client) FetchPredictions(ctx context.Context, stationID string, beginDate, endDate time.Time) ([]models.TidePrediction, error) {
	params := url.Values{
		"product":     {"predictions"},
		"application": {"flood-alert"},
		"station":     {stationID},
		"begin_date":  {beginDate.Format("20060102")},
		"end_date":    {endDate.Format("20060102")},
		"datum":       {"MLLW"},
		"time_zone":   {"lst_ldt"},
		"units":       {"english"},
		"interval":    {"hilo"},
		"format":      {"json"},
	}
	fullURL := c.baseURL + "/api/prod/datagetter?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictions request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("noaa API error: status %d: %s", resp.StatusCode, body)
	}

	var noaaResp response
	if err := json.NewDecoder(resp.Body).Decode(&noaaResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if noaaResp.Error != nil {
		return nil, fmt.Errorf("noaa API error: %s", noaaResp.Error.Message)
	}

	predictions := make([]models.TidePrediction, 0, len(noaaResp.Predictions))
	for _, p := range noaaResp.Predictions {
		predictionTime, err := time.Parse(predictionTimeLayout, p.Time)
		if err != nil {
			return nil, fmt.Errorf("parse prediction time %q: %w", p.Time, err)
		}
		height, err := strconv.ParseFloat(p.Height, 64)
		if err != nil {
			return nil, fmt.Errorf("parse prediction height %q: %w", p.Height, err)
		}
		predictions = append(predictions, models.TidePrediction{
			Time:     predictionTime,
			HeightFt: height,
			TideType: tideType(p.Type),
		})
	}

	c.log.Info("fetched tide predictions", slog.String("station", stationID), slog.Int("count", len(predictions)))
	return predictions, nil
}

func tideType(code string) string {
	switch code {
	case "H":
		return models.TideTypeHigh
	case "L":
		return models.TideTypeLow
	default:
		return ""
	}
}

// Типы ответа NOAA datagetter.

type response struct {
	Predictions []prediction   `json:"predictions"`
	Error       *responseError `json:"error,omitempty"`
}

type prediction struct {
	Time   string `json:"t"`
	Height string `json:"v"`
	Type   string `json:"type"`
}

type responseError struct {
	Message string `json:"message"`
}
