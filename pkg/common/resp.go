package common

import (
	"encoding/json"
	"net/http"
)

// WriteMsg replies with `{"message": "..."}` and the given status code.
func WriteMsg(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := struct {
		Message string `json:"message"`
	}{Message: msg}
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteRespJSON serializes v into the response body.
func WriteRespJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "can't serialize response", http.StatusInternalServerError)
	}
}
