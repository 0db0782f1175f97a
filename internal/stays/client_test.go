package stays

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	logins := 0
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "user", creds["username"])
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + creds["username"]})
	})

	mux.HandleFunc("/api/reservations", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-user" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"reservation_id": "R1",
					"property_id":    "L9",
					"check_in":       "2024-05-10",
					"check_out":      "2024-05-13",
					"total_amount":   950.0,
					"service_fee":    45.5,
					"source":         "Airbnb",
					"guest_name":     "Ana Oliveira",
					"phone":          "(11) 95555-0000",
				},
				{
					// no identifier, must be dropped
					"check_in":  "2024-05-20",
					"check_out": "2024-05-22",
				},
			},
		})
	})

	return httptest.NewServer(mux), &logins
}

func TestListReservationsNormalizesAliases(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	client := NewClient(srv.URL, "user", "pass")

	reservas, err := client.ListReservations(context.Background(), "2024-05-01", "2024-05-31", "")
	require.NoError(t, err)
	require.Len(t, reservas, 1)

	reserva := reservas[0]
	assert.Equal(t, "R1", reserva.ID)
	assert.Equal(t, "L9", reserva.ListingID)
	assert.Equal(t, "2024-05-10", reserva.Checkin)
	assert.Equal(t, "2024-05-13", reserva.Checkout)
	assert.Equal(t, 950.0, reserva.TotalBruto)
	assert.Equal(t, 45.5, reserva.Taxas)
	assert.Equal(t, "Airbnb", reserva.Canal)
	assert.Equal(t, "Ana Oliveira", reserva.Hospede)
}

func TestListReservationsReusesSession(t *testing.T) {
	srv, logins := newTestServer(t)
	defer srv.Close()

	client := NewClient(srv.URL, "user", "pass")
	ctx := context.Background()

	_, err := client.ListReservations(ctx, "2024-05-01", "2024-05-31", "")
	require.NoError(t, err)
	_, err = client.ListReservations(ctx, "2024-06-01", "2024-06-30", "")
	require.NoError(t, err)

	assert.Equal(t, 1, *logins)
}

func TestListReservationsReauthenticatesOn401(t *testing.T) {
	logins := 0
	revoked := true
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		revoked = false
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh"})
	})
	mux.HandleFunc("/api/reservations", func(w http.ResponseWriter, r *http.Request) {
		if revoked || r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, "user", "pass")
	client.token = "stale"
	revoked = true

	_, err := client.ListReservations(context.Background(), "2024-05-01", "2024-05-31", "")
	require.NoError(t, err)
	assert.Equal(t, 1, logins)
}

func TestSampleDataWhenUnconfigured(t *testing.T) {
	client := NewClient("", "", "")
	assert.False(t, client.Configured())

	first, err := client.ListReservations(context.Background(), "2024-05-01", "2024-05-31", "")
	require.NoError(t, err)
	second, err := client.ListReservations(context.Background(), "2024-05-01", "2024-05-31", "")
	require.NoError(t, err)

	// Same query, same synthetic data.
	assert.Equal(t, first, second)

	for _, reserva := range first {
		assert.NotEmpty(t, reserva.ID)
		assert.Less(t, reserva.Checkin, reserva.Checkout)
		assert.GreaterOrEqual(t, reserva.TotalBruto, 0.0)
	}
}

func TestExtractItemsShapes(t *testing.T) {
	bare := []byte(`[{"id":"R1"}]`)
	items, err := extractItems(bare)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	wrapped := []byte(`{"reservations":[{"id":"R1"},{"id":"R2"}]}`)
	items, err = extractItems(wrapped)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = extractItems([]byte(`{"unexpected":true}`))
	assert.Error(t, err)
}
