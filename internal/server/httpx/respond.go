package httpx

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// failure is the {success:false, errors:...} body used by most endpoints.
type failure struct {
	Success bool   `json:"success"`
	Errors  string `json:"errors"`
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, failure{Success: false, Errors: msg})
}

// authFailure is the bare {errors:...} body of the auth gate.
type authFailure struct {
	Errors string `json:"errors"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type productAck struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
}

type uploadResponse struct {
	Success  int    `json:"success"`
	ImageURL string `json:"image_url"`
}
