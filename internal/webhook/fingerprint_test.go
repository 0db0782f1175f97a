package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventIDKeyOrderIndependent(t *testing.T) {
	a := []byte(`{"data":{"listing_id":"5","id":"R1"},"type":"reservation.updated"}`)
	b := []byte(`{"type":"reservation.updated","data":{"id":"R1","listing_id":"5"}}`)

	idA, err := EventID(a)
	require.NoError(t, err)
	idB, err := EventID(b)
	require.NoError(t, err)

	assert.Equal(t, idA, idB)
}

func TestEventIDPrefersExplicitField(t *testing.T) {
	payload := []byte(`{"event_id":"evt-42","data":{"id":"R1","updated_at":"2024-01-01T00:00:00Z"}}`)

	id, err := EventID(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt-42", id)
}

func TestEventIDNumericExplicitField(t *testing.T) {
	id, err := EventID([]byte(`{"event_id":1234}`))
	require.NoError(t, err)
	assert.Equal(t, "1234", id)
}

func TestEventIDCompositeFallback(t *testing.T) {
	a := []byte(`{"data":{"id":"R1","updated_at":"2024-01-01T00:00:00Z","canal":"Airbnb"}}`)
	b := []byte(`{"data":{"id":"R1","updated_at":"2024-01-01T00:00:00Z","canal":"Booking.com"}}`)
	c := []byte(`{"data":{"id":"R1","updated_at":"2024-01-02T00:00:00Z","canal":"Airbnb"}}`)

	idA, err := EventID(a)
	require.NoError(t, err)
	idB, err := EventID(b)
	require.NoError(t, err)
	idC, err := EventID(c)
	require.NoError(t, err)

	// Same record version hashes the same even when other fields differ;
	// a new updated_at produces a new fingerprint.
	assert.Equal(t, idA, idB)
	assert.NotEqual(t, idA, idC)
}

func TestEventIDDistinctPayloads(t *testing.T) {
	idA, err := EventID([]byte(`{"data":{"id":"R1"}}`))
	require.NoError(t, err)
	idB, err := EventID([]byte(`{"data":{"id":"R2"}}`))
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
	assert.Len(t, idA, 64) // sha256 hex
}

func TestEventIDInvalidJSON(t *testing.T) {
	_, err := EventID([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
