// Package weather enriches screens with current conditions.
//
// Weather is decoration; every failure here is isolated so a broken forecast
// API can never affect connectivity tracking or schedule resolution.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Reading is a current-conditions sample for one location
type Reading struct {
	// TemperatureC is the current temperature in degrees Celsius
	TemperatureC float64
	// Code is the WMO weather interpretation code
	Code int
	// FetchedAt is when the sample was taken
	FetchedAt time.Time
}

// Provider fetches current conditions for a coordinate
type Provider interface {
	Fetch(ctx context.Context, lat, lon float64) (Reading, error)
}

const defaultBaseURL = "https://api.open-meteo.com"

// OpenMeteo is a Provider backed by the Open-Meteo forecast API
type OpenMeteo struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures an OpenMeteo provider
type Option func(*OpenMeteo)

// WithBaseURL overrides the API origin, for tests
func WithBaseURL(baseURL string) Option {
	return func(p *OpenMeteo) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient swaps the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(p *OpenMeteo) {
		p.httpClient = hc
	}
}

// NewOpenMeteo creates an Open-Meteo provider
func NewOpenMeteo(options ...Option) *OpenMeteo {
	p := &OpenMeteo{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Fetch returns current conditions for the coordinate
func (p *OpenMeteo) Fetch(ctx context.Context, lat, lon float64) (Reading, error) {
	u, err := url.Parse(p.baseURL + "/v1/forecast")
	if err != nil {
		return Reading{}, fmt.Errorf("weather: invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Reading{}, fmt.Errorf("weather: creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("weather: fetching conditions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("weather: HTTP %d from forecast API", resp.StatusCode)
	}

	var body struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reading{}, fmt.Errorf("weather: decoding response: %w", err)
	}

	return Reading{
		TemperatureC: body.CurrentWeather.Temperature,
		Code:         body.CurrentWeather.WeatherCode,
		FetchedAt:    time.Now(),
	}, nil
}
