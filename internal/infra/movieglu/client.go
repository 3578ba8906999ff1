package movieglu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"showtime_alert_bot/internal/domain/showtime"
)

const (
	apiVersionShowtimes = "v201"
	apiVersionCinemas   = "v200"
	nearbyLimit         = 10
	maxBodyBytes        = 4 << 20
)

// Config carries the MovieGlu credentials and endpoint.
type Config struct {
	BaseURL       string
	ClientID      string
	APIKey        string
	Authorization string
	Territory     string
	Geolocation   string
	Timeout       time.Duration
}

// Client talks to the MovieGlu listings API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	maxBody    int64
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		maxBody:    maxBodyBytes,
	}
}

// FetchShowtimes returns today's listing for a cinema, one entry per film.
// A 204 from the provider means nothing is scheduled and yields an empty listing.
func (c *Client) FetchShowtimes(ctx context.Context, cinemaID string, date time.Time) ([]showtime.Film, error) {
	const op = "cinemaShowTimes"
	q := url.Values{}
	q.Set("cinema_id", cinemaID)
	q.Set("date", date.Format(showtime.DateLayout))

	status, body, err := c.get(ctx, op, q, apiVersionShowtimes)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return []showtime.Film{}, nil
	}

	var resp showtimesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Op: op, StatusCode: status, Body: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Films == nil {
		return nil, &ProviderError{Op: op, StatusCode: status, Body: string(body), Err: errors.New("response has no films array")}
	}
	return flattenFilms(*resp.Films), nil
}

// FetchCinemasNearby returns the closest cinemas to a coordinate.
func (c *Client) FetchCinemasNearby(ctx context.Context, latitude, longitude float64) ([]showtime.Cinema, error) {
	const op = "cinemasNearby"
	q := url.Values{}
	q.Set("n", strconv.Itoa(nearbyLimit))
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))

	status, body, err := c.get(ctx, op, q, apiVersionCinemas)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return []showtime.Cinema{}, nil
	}

	var resp cinemasResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProviderError{Op: op, StatusCode: status, Body: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Cinemas == nil {
		return nil, &ProviderError{Op: op, StatusCode: status, Body: string(body), Err: errors.New("response has no cinemas array")}
	}
	return toCinemas(*resp.Cinemas), nil
}

func (c *Client) get(ctx context.Context, op string, q url.Values, apiVersion string) (int, []byte, error) {
	endpoint := c.cfg.BaseURL + "/" + op + "/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, &ProviderError{Op: op, Err: err}
	}
	req.Header.Set("client", c.cfg.ClientID)
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("authorization", c.cfg.Authorization)
	req.Header.Set("territory", c.cfg.Territory)
	req.Header.Set("api-version", apiVersion)
	req.Header.Set("geolocation", c.cfg.Geolocation)
	req.Header.Set("device-datetime", c.now().UTC().Format("2006-01-02T15:04:05.000Z"))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &ProviderError{Op: op, Err: err}
	}
	defer res.Body.Close()

	// One byte past the limit tells a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBody+1))
	if err != nil {
		return res.StatusCode, nil, &ProviderError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	tooLarge := int64(len(body)) > c.maxBody
	if tooLarge {
		body = body[:c.maxBody]
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, nil, &ProviderError{Op: op, StatusCode: res.StatusCode, Body: string(body)}
	}
	if tooLarge {
		return res.StatusCode, nil, &ProviderError{
			Op:         op,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, c.maxBody),
		}
	}
	return res.StatusCode, body, nil
}
