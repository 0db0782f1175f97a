// Package stays talks to the Stays property-management API. The session token
// lives on the Client and is refreshed once per request when the API answers
// 401; callers never deal with authentication. When no credentials are
// configured the client serves deterministic sample data so the dashboard
// stays usable in demos and local development.
package stays

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"stays-dashboard/internal/models"
	"stays-dashboard/internal/util"

	"go.uber.org/zap"
)

type Client struct {
	baseURL  string
	login    string
	password string

	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

// NewClient creates a Stays API client. Empty credentials switch the client
// into sample-data mode.
func NewClient(baseURL, login, password string) *Client {
	return &Client{
		baseURL:    baseURL,
		login:      login,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     util.GetLogger(),
	}
}

// Configured reports whether real Stays credentials are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.login != ""
}

// ListReservations fetches reservations overlapping [from, to], optionally
// filtered by listing. Dates are YYYY-MM-DD strings.
func (c *Client) ListReservations(ctx context.Context, from, to, listingID string) ([]models.Reserva, error) {
	if !c.Configured() {
		return c.sampleReservations(from, to, listingID), nil
	}

	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	if listingID != "" {
		params.Set("listing_id", listingID)
	}

	body, err := c.get(ctx, "/api/reservations", params)
	if err != nil {
		return nil, err
	}

	items, err := extractItems(body)
	if err != nil {
		return nil, err
	}

	reservas := make([]models.Reserva, 0, len(items))
	for _, item := range items {
		if reserva, ok := normalize(item); ok {
			reservas = append(reservas, reserva)
		}
	}
	return reservas, nil
}

// get performs an authenticated GET, logging in first when no session is held
// and retrying exactly once after a re-login on 401.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	token, err := c.sessionToken(ctx, false)
	if err != nil {
		return nil, err
	}

	status, body, err := c.doGet(ctx, endpoint, params, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		c.logger.Info("Stays session expired, re-authenticating",
			zap.String("endpoint", endpoint))
		token, err = c.sessionToken(ctx, true)
		if err != nil {
			return nil, err
		}
		status, body, err = c.doGet(ctx, endpoint, params, token)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		util.StaysRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("stays API returned status %d: %s", status, body)
	}

	util.StaysRequestsTotal.WithLabelValues("ok").Inc()
	return body, nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("stays request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// sessionToken returns the held session token, logging in when none is held
// or when the caller forces a refresh.
func (c *Client) sessionToken(ctx context.Context, refresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !refresh {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"username": c.login,
		"password": c.password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stays login failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("stays login returned status %d: %s", resp.StatusCode, body)
	}

	var loginResp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", fmt.Errorf("failed to decode stays login response: %w", err)
	}

	c.token = loginResp.Token
	if c.token == "" {
		c.token = loginResp.AccessToken
	}
	if c.token == "" {
		return "", fmt.Errorf("stays login response carried no token")
	}
	return c.token, nil
}

// extractItems tolerates the known response envelopes: a bare array or an
// object wrapping it under data, items or reservations.
func extractItems(body []byte) ([]map[string]interface{}, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected stays response shape: %w", err)
	}

	for _, key := range []string{"data", "items", "reservations"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}
	return nil, fmt.Errorf("no reservation list found in stays response")
}

// normalize maps the upstream field aliases onto our reservation shape.
// Missing amounts default to zero.
func normalize(item map[string]interface{}) (models.Reserva, bool) {
	id := firstString(item, "id", "reservation_id")
	if id == "" {
		return models.Reserva{}, false
	}

	listingID := firstString(item, "listing_id", "property_id")
	if listingID == "" {
		listingID = "1"
	}

	canal := firstString(item, "channel", "source", "canal")
	if canal == "" {
		canal = "Direto"
	}
	hospede := firstString(item, "guest_name", "guest", "hospede")
	if hospede == "" {
		hospede = "Hóspede"
	}

	return models.Reserva{
		ID:         id,
		ListingID:  listingID,
		Checkin:    firstString(item, "checkin", "check_in", "arrival"),
		Checkout:   firstString(item, "checkout", "check_out", "departure"),
		TotalBruto: firstNumber(item, "total", "total_amount", "amount", "total_bruto"),
		Taxas:      firstNumber(item, "fees", "service_fee", "taxas"),
		Canal:      canal,
		Hospede:    hospede,
		Telefone:   firstString(item, "phone", "telefone"),
	}, true
}

func firstString(item map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func firstNumber(item map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := item[key].(float64); ok {
			return v
		}
	}
	return 0
}

// sampleReservations generates demo data. The same query always produces the
// same reservations so cache hits and misses agree.
func (c *Client) sampleReservations(from, to, listingID string) []models.Reserva {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}
	end, err := time.Parse(models.DateLayout, to)
	if err != nil {
		end = start.AddDate(0, 0, 30)
	}

	seed := fnv.New64a()
	fmt.Fprintf(seed, "%s|%s|%s", from, to, listingID)
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	canais := []string{"Airbnb", "Booking.com", "Direto", "VRBO"}
	hospedes := []string{"João Silva", "Maria Santos", "Pedro Costa", "Ana Oliveira", "Carlos Souza"}

	listing := listingID
	if listing == "" {
		listing = "1"
	}

	var reservas []models.Reserva
	for current := start; current.Before(end); {
		if rng.Float64() >= 0.3 {
			current = current.AddDate(0, 0, 1)
			continue
		}

		checkout := current.AddDate(0, 0, 2+rng.Intn(6))
		reservas = append(reservas, models.Reserva{
			ID:         fmt.Sprintf("RES%d", 1000+rng.Intn(9000)),
			ListingID:  listing,
			Checkin:    current.Format(models.DateLayout),
			Checkout:   checkout.Format(models.DateLayout),
			TotalBruto: float64(int(rng.Float64()*60000+20000)) / 100,
			Taxas:      float64(int(rng.Float64()*6000+2000)) / 100,
			Canal:      canais[rng.Intn(len(canais))],
			Hospede:    hospedes[rng.Intn(len(hospedes))],
			Telefone:   fmt.Sprintf("(11) 9%04d-%04d", rng.Intn(10000), rng.Intn(10000)),
		})
		current = checkout
	}

	return reservas
}
