package noaa

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/flood-alert/internal/config"
	"github.com/magabrotheeeer/flood-alert/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewClient(config.NOAA{NOAABaseURL: server.URL, NOAATimeout: 5 * time.Second}, logger)
}

func TestFetchPredictions_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "predictions", q.Get("product"))
		assert.Equal(t, "9414819", q.Get("station"))
		assert.Equal(t, "20231005", q.Get("begin_date"))
		assert.Equal(t, "20231104", q.Get("end_date"))
		assert.Equal(t, "MLLW", q.Get("datum"))
		assert.Equal(t, "lst_ldt", q.Get("time_zone"))
		assert.Equal(t, "english", q.Get("units"))
		assert.Equal(t, "hilo", q.Get("interval"))

		_, _ = w.Write([]byte(`{"predictions":[
			{"t":"2023-10-05 14:30","v":"6.789","type":"H"},
			{"t":"2023-10-05 21:12","v":"1.02","type":"L"},
			{"t":"2023-10-06 03:44","v":"4.50","type":""}
		]}`))
	})

	begin := time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC)
	end := begin.AddDate(0, 0, 30)

	got, err := client.FetchPredictions(context.Background(), "9414819", begin, end)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2023, 10, 5, 14, 30, 0, 0, time.UTC), got[0].Time)
	assert.Equal(t, 6.789, got[0].HeightFt)
	assert.Equal(t, models.TideTypeHigh, got[0].TideType)
	assert.Equal(t, models.TideTypeLow, got[1].TideType)
	// неклассифицированная запись доходит до вызывающего с пустым типом
	assert.Equal(t, "", got[2].TideType)
}

func TestFetchPredictions_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"No Predictions data was found."}}`))
	})

	_, err := client.FetchPredictions(context.Background(), "9414819", time.Now(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "No Predictions data was found")
}

func TestFetchPredictions_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchPredictions(context.Background(), "9414819", time.Now(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchPredictions_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"битое время", `{"predictions":[{"t":"not-a-time","v":"6.4","type":"H"}]}`},
		{"битая высота", `{"predictions":[{"t":"2023-10-05 14:30","v":"tall","type":"H"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchPredictions(context.Background(), "9414819", time.Now(), time.Now())
			require.Error(t, err)
		})
	}
}
