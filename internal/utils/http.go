package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBody bounds the size of JSON request bodies accepted by
// DecodeJSON.
const MaxRequestBody = 4 << 20

// WriteJSON serializes data to JSON and writes it with the given status code
// and a "Content-Type: application/json" header. If marshaling fails it
// responds with 500 Internal Server Error and returns a wrapped error.
//
//	WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// DecodeJSON decodes the request body into v. Unknown fields are rejected and
// the body is limited to MaxRequestBody bytes.
func DecodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxRequestBody))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("error decoding request body: %w", err)
	}
	return nil
}
