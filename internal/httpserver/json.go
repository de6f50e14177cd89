package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

type (
	errorBody struct {
		Error string `json:"error"`
	}
)

const (
	// MaxBodySize limits request bodies, pictures are the largest payload
	MaxBodySize = 10_000_000
)

// JSON writes v as the response body with the given status
func JSON(w http.ResponseWriter, status int, v interface{}) {
	buf, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

// Error writes {"error": msg} with the given status
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// DecodeJSON reads a single JSON value from the body of r into out
func DecodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	err := dec.Decode(out)
	if err == io.EOF {
		return fmt.Errorf("request body is empty")
	} else if err != nil {
		return fmt.Errorf("invalid request body, cause %w", err)
	}
	return nil
}
