package apiclient

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// newStatusError builds an Error from a non-2xx response body.
func newStatusError(status int, body []byte) *Error {
	e := &Error{Status: status}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		e.Message = fallbackMessage(status)
		return e
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		e.Payload = string(body)
		e.Message = fallbackMessage(status)
		return e
	}
	e.Payload = payload

	if msg := messageFromPayload(payload); msg != "" {
		e.Message = msg
	} else {
		e.Message = fallbackMessage(status)
	}
	return e
}

func messageFromPayload(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}

	switch detail := obj["detail"].(type) {
	case string:
		if detail != "" {
			return detail
		}
	case []any:
		// FastAPI validation errors: [{"loc": [...], "msg": "...", "type": "..."}]
		for _, item := range detail {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && msg != "" {
					return msg
				}
			}
		}
	}

	if msg, ok := obj["message"].(string); ok && msg != "" {
		return msg
	}
	return ""
}

func fallbackMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return defaultMessage
}
