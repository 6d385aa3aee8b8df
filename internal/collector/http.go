package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"OptionPulse/internal/model"
)

// HTTPProvider fetches quotes from a REST market data API.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPProvider creates a provider with optional proxy support.
func NewHTTPProvider(baseURL, apiKey, proxyURL string) *HTTPProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (p *HTTPProvider) Name() string { return "http" }

// quote is the expected JSON shape from the quote endpoint.
type quote struct {
	Timestamp int64   `json:"timestamp"`
	LastPrice float64 `json:"last_price"`
	Volume    float64 `json:"volume"`
}

// Quote fetches the latest observation for the instrument.
func (p *HTTPProvider) Quote(ctx context.Context, instrument string) (model.PriceObservation, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", p.BaseURL, url.QueryEscape(instrument))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.PriceObservation{}, err
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return model.PriceObservation{}, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.PriceObservation{}, fmt.Errorf("fetch quote: status %d, body: %s", resp.StatusCode, string(body))
	}

	var q quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return model.PriceObservation{}, fmt.Errorf("decode quote: %w", err)
	}
	if q.LastPrice <= 0 {
		return model.PriceObservation{}, fmt.Errorf("malformed quote for %s: price %.2f", instrument, q.LastPrice)
	}
	ts := time.Unix(q.Timestamp, 0)
	if q.Timestamp == 0 {
		ts = time.Now()
	}
	return model.PriceObservation{
		Instrument: instrument,
		Timestamp:  ts,
		LastPrice:  q.LastPrice,
		Volume:     q.Volume,
	}, nil
}
