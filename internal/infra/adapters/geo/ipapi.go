package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"video-download-service/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.GeoResolver = (*Client)(nil)

// Client resolves client IPs against an ipapi.co-compatible endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "GeoClient").Logger()
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     &l,
	}
}

// Resolve returns empty strings on any failure; geo enrichment must never
// fail an audit write.
func (c *Client) Resolve(ctx context.Context, ip string) (string, string) {
	if ip == "" {
		return "", ""
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ""
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("ip", ip).Msg("geo lookup failed")
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ""
	}

	var body struct {
		CountryName string `json:"country_name"`
		City        string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ""
	}
	return body.CountryName, body.City
}
