package apiclient

import (
	"encoding/json"
	"net/http"
)

// Result is the uniform outcome of a request round-trip. Data is nil when
// the response body was empty or not valid JSON; Status is always usable.
type Result struct {
	OK     bool
	Status int
	Data   json.RawMessage
	Header http.Header
}

// Decode unmarshals the response body into v.
func (r Result) Decode(v any) error {
	if r.Data == nil {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(r.Data, v)
}

// ErrorMessage extracts the server-provided error message from a rejection
// body, checking the conventional "error" then "message" fields. Returns an
// empty string when the body carries neither, so callers can substitute a
// generic localized message.
func (r Result) ErrorMessage() string {
	if r.Data == nil {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
