package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Envelope is the uniform response shape returned by every route. Status is
// mirrored into the HTTP status code.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeEnvelope encodes the envelope with its status as the HTTP status code.
func writeEnvelope(w http.ResponseWriter, e Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// decodeBody parses the request body into a generic map, keeping numbers as
// json.Number so large chat ids survive intact.
func decodeBody(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	data := map[string]any{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	return data, nil
}

// Required reports whether every expected key is present and non-null in
// data. Missing keys come back in the order they were asked for.
func Required(data map[string]any, expected ...string) (bool, []string) {
	ok := true
	missing := []string{}
	for _, key := range expected {
		if value, exists := data[key]; !exists || value == nil {
			ok = false
			missing = append(missing, key)
		}
	}
	return ok, missing
}

// asInt64 coerces a decoded JSON value (json.Number or numeric string) to an
// int64 chat or user id.
func asInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case json.Number:
		n, err := value.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// asString renders a decoded JSON scalar as a member reference string.
func asString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	default:
		return "", false
	}
}

// asBool reads an optional boolean flag from the payload; absent or non-bool
// values count as false.
func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
