package weather

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/krishi-connect/internal/testutil"
	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"cod": 200,
	"name": "Ludhiana",
	"main": {"temp": 31.6, "humidity": 48},
	"weather": [{"description": "साफ आसमान"}]
}`

func newTestClient(t *testing.T, mock *testutil.MockUpstream, apiKey string) *Client {
	t.Helper()
	cfg := client.DefaultConfig("krishi-connect-test/1.0")
	cfg.Retry.BaseDelay = 5 * time.Millisecond
	c, err := client.New(cfg)
	require.NoError(t, err)
	return New(mock.URL()+"/data/2.5/weather", apiKey, c)
}

func TestCurrent_Coordinates(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/data/2.5/weather", testutil.NewJSONResponse(sampleResponse))

	got, err := newTestClient(t, mock, "secret").Current(context.Background(), &Coordinates{Lat: 30.9, Lon: 75.85})
	require.NoError(t, err)

	assert.Equal(t, Conditions{Temp: 32, Condition: "साफ आसमान", Humidity: 48, City: "Ludhiana"}, got)

	q := mock.GetLastQuery()
	assert.Equal(t, "30.9", q.Get("lat"))
	assert.Equal(t, "75.85", q.Get("lon"))
	assert.Equal(t, "secret", q.Get("appid"))
	assert.Equal(t, "metric", q.Get("units"))
	assert.Equal(t, "hi", q.Get("lang"))
	assert.False(t, q.Has("q"))
}

func TestCurrent_FallsBackToDelhi(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/data/2.5/weather", testutil.NewJSONResponse(
		`{"cod": 200, "name": "Delhi", "main": {"temp": 24.4, "humidity": 60}, "weather": []}`))

	got, err := newTestClient(t, mock, "secret").Current(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Delhi", mock.GetLastQuery().Get("q"))
	assert.Equal(t, 24, got.Temp)
	assert.Equal(t, NoCondition, got.Condition)
}

func TestCurrent_MissingAPIKey(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	_, err := newTestClient(t, mock, "").Current(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, 0, mock.GetRequestCount())
}

func TestCurrent_CodNot200(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/data/2.5/weather", testutil.NewJSONResponse(`{"cod": "404", "message": "city not found"}`))

	_, err := newTestClient(t, mock, "secret").Current(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "city not found")
}

func TestCurrent_HTTPError(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/data/2.5/weather", testutil.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"cod": 401, "message": "Invalid API key"}`,
	})

	_, err := newTestClient(t, mock, "bad").Current(context.Background(), nil)
	assert.ErrorIs(t, err, client.ErrRetryExhausted)
}

func TestCodOf(t *testing.T) {
	tests := map[string]int{
		`200`:   200,
		`"200"`: 200,
		`"404"`: 404,
		` 401 `: 401,
		``:      0,
		`null`:  0,
	}
	for raw, want := range tests {
		assert.Equal(t, want, codOf([]byte(raw)), "cod %q", raw)
	}
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c := New("", "k", client.FetcherFunc(nil))
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
