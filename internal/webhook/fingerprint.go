package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload signals a delivery body that is not valid JSON; the API
// layer maps it to a 400.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// EventID derives the deterministic dedup fingerprint for a webhook payload.
//
// An explicit event_id field is used verbatim so upstream idempotency keys are
// respected. Otherwise the nested record's id plus its updated_at timestamp
// are hashed, which already catches "same record, same version" redeliveries.
// Only when neither is present is the whole payload hashed over its canonical
// serialization (json.Marshal of a map emits keys sorted, no extra whitespace),
// so key ordering in the delivery does not change the fingerprint.
func EventID(raw []byte) (string, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if id, ok := payload["event_id"]; ok {
		return stringify(id), nil
	}

	if data, ok := payload["data"].(map[string]interface{}); ok {
		id, hasID := data["id"]
		updatedAt, hasUpdated := data["updated_at"]
		if hasID && hasUpdated {
			return hashString(fmt.Sprintf("%s-%s", stringify(id), stringify(updatedAt))), nil
		}
	}

	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize payload: %w", err)
	}
	return hashString(string(canonical)), nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// stringify renders JSON scalars the way they appeared on the wire where
// possible; integral numbers drop the decimal point.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
