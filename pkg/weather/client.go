// Package weather resolves the user's location from their public IP and
// fetches the current temperature there. Both upstreams are free APIs that
// require no key: ipwhois.app for geolocation and Open-Meteo for weather.
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

const (
	defaultGeoURL      = "http://ipwhois.app/json/"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultTimeout     = 5 * time.Second
)

// Report is the combined location and current-weather answer.
type Report struct {
	City        string
	Region      string
	Country     string
	Latitude    float64
	Longitude   float64
	Temperature float64
}

// Client queries the geolocation and forecast endpoints.
type Client struct {
	httpClient  *http.Client
	geoURL      string
	forecastURL string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithGeoURL overrides the geolocation endpoint.
func WithGeoURL(u string) Option {
	return func(c *Client) { c.geoURL = u }
}

// WithForecastURL overrides the forecast endpoint.
func WithForecastURL(u string) Option {
	return func(c *Client) { c.forecastURL = u }
}

// New creates a Client with a short request timeout; both upstreams answer
// in well under a second when healthy.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		geoURL:      defaultGeoURL,
		forecastURL: defaultForecastURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type geoResponse struct {
	City        string  `json:"city"`
	Region      string  `json:"region"`
	CountryName string  `json:"country_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
	} `json:"current_weather"`
}

// CurrentByIP resolves the caller's city from their IP, then fetches the
// current temperature at those coordinates.
func (c *Client) CurrentByIP(ctx context.Context) (*Report, error) {
	var geo geoResponse
	if err := c.getJSON(ctx, c.geoURL, &geo); err != nil {
		return nil, fmt.Errorf("lookup location: %w", err)
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(geo.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(geo.Longitude, 'f', -1, 64))
	query.Set("current_weather", "true")

	var forecast forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+query.Encode(), &forecast); err != nil {
		return nil, fmt.Errorf("lookup weather: %w", err)
	}

	return &Report{
		City:        geo.City,
		Region:      geo.Region,
		Country:     geo.CountryName,
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
		Temperature: forecast.CurrentWeather.Temperature,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", rawURL, err)
	}
	return nil
}
