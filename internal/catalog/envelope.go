package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// unwrapEnvelope reports whether body is a {status, data, message} wrapper
// and returns its data member. Any JSON object carrying a "data" key counts.
func unwrapEnvelope(body []byte) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, false
	}
	data, ok := obj["data"]
	if !ok {
		return nil, false
	}
	return data, true
}

// decodeList accepts an enveloped array or a bare array.
func decodeList(body []byte) ([]Record, error) {
	payload := body
	if data, ok := unwrapEnvelope(body); ok {
		payload = data
	}
	if isNull(payload) {
		return nil, fmt.Errorf("%w: list payload is empty", ErrMalformedResponse)
	}

	var items []*Record
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: expected a list of books: %v", ErrMalformedResponse, err)
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

// decodeRecord accepts an enveloped object, a bare object, or a bare array
// whose first element is the record.
func decodeRecord(body []byte) (Record, error) {
	payload := body
	if data, ok := unwrapEnvelope(body); ok {
		if isNull(data) {
			return Record{}, ErrNotFound
		}
		payload = data
	}

	var rec Record
	objErr := json.Unmarshal(payload, &rec)
	if objErr == nil {
		if rec.ID == 0 && rec.Title == "" {
			return Record{}, fmt.Errorf("%w: book has neither id nor title", ErrMalformedResponse)
		}
		return rec, nil
	}

	var items []*Record
	if err := json.Unmarshal(payload, &items); err == nil {
		for _, item := range items {
			if item != nil {
				return *item, nil
			}
		}
		return Record{}, ErrNotFound
	}
	return Record{}, fmt.Errorf("%w: expected a book: %v", ErrMalformedResponse, objErr)
}

// errorMessage picks the text to surface for a non-2xx body: a JSON
// "message" member first, then the JSON text itself, then raw text.
func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return text
	}
	switch v := parsed.(type) {
	case map[string]any:
		if msg, ok := v["message"].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	}
	return text
}
