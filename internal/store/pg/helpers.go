package pg

import (
	"encoding/json"
	"time"
)

// jsonOrEmpty substitutes an empty JSON object for nil so JSONB columns
// with a NOT NULL constraint always get a value.
func jsonOrEmpty(data json.RawMessage) json.RawMessage {
	if data == nil {
		return json.RawMessage("{}")
	}
	return data
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
