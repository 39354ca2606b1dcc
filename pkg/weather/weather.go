// Package weather looks up current conditions from OpenWeatherMap.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/Sternrassler/krishi-connect/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the OpenWeatherMap current weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// FallbackCity is queried when no coordinates are known.
const FallbackCity = "Delhi"

// NoCondition is shown when the response carries no description.
const NoCondition = "—"

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("missing weather API key")

	// ErrUpstream is returned when the API answers with a non-200 cod.
	ErrUpstream = errors.New("weather API error")
)

// Coordinates locate the caller.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Conditions are the displayed current conditions.
type Conditions struct {
	Temp      int    `json:"temp"`
	Condition string `json:"condition"`
	Humidity  int    `json:"humidity"`
	City      string `json:"city"`
}

// Client queries OpenWeatherMap.
type Client struct {
	baseURL string
	apiKey  string
	fetcher client.Fetcher
	logger  zerolog.Logger
}

// New creates a weather client. An empty baseURL uses DefaultBaseURL. A
// missing apiKey is not an error until Current is called.
func New(baseURL, apiKey string, fetcher client.Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		fetcher: fetcher,
		logger:  logging.NewLogger("weather"),
	}
}

// response is the subset of the OpenWeatherMap payload that is used.
type response struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
	Name    string          `json:"name"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current returns the conditions at coords, or in FallbackCity when coords
// is nil. Temperatures are metric, descriptions are in Hindi.
func (c *Client) Current(ctx context.Context, coords *Coordinates) (Conditions, error) {
	if c.apiKey == "" {
		return Conditions{}, ErrMissingAPIKey
	}

	res := c.fetcher.Fetch(ctx, c.requestURL(coords))
	if res.Outcome != client.OutcomeSuccess {
		return Conditions{}, fmt.Errorf("fetch weather: %w", res.Err)
	}

	var body response
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return Conditions{}, fmt.Errorf("decode weather: %w", err)
	}
	if code := codOf(body.Cod); code != 200 {
		msg := body.Message
		if msg == "" {
			msg = "API error"
		}
		c.logger.Warn().Int("cod", code).Str("message", msg).Msg("Weather lookup rejected")
		return Conditions{}, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}

	condition := NoCondition
	if len(body.Weather) > 0 && body.Weather[0].Description != "" {
		condition = body.Weather[0].Description
	}

	return Conditions{
		Temp:      int(math.Round(body.Main.Temp)),
		Condition: condition,
		Humidity:  int(math.Round(body.Main.Humidity)),
		City:      body.Name,
	}, nil
}

func (c *Client) requestURL(coords *Coordinates) string {
	q := url.Values{}
	if coords != nil {
		q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	} else {
		q.Set("q", FallbackCity)
	}
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "hi")
	return c.baseURL + "?" + q.Encode()
}

// codOf reads cod, which the API sends as a number on success and as a
// string on errors.
func codOf(raw json.RawMessage) int {
	raw = bytes.Trim(bytes.TrimSpace(raw), `"`)
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return n
}
