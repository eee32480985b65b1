package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort      = "8081"
	defaultAPIKey    = "authority-registry-secret-key"
	defaultLatencyMs = "100"
)

type AuthenticateRequest struct {
	IDCitizen     int64  `json:"idCitizen"`
	URLDocument   string `json:"urlDocument"`
	DocumentTitle string `json:"documentTitle"`
}

type AuthenticateResponse struct {
	IDCitizen     int64  `json:"idCitizen"`
	DocumentTitle string `json:"documentTitle"`
	Authentic     bool   `json:"authentic"`
	CheckedAt     string `json:"checkedAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/apis/authenticateDocument", handleAuthenticate)

	log.Printf("Mock Authority Registry starting on port %s", port)
	log.Printf("API Key: %s", apiKey)
	log.Printf("Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "authority-registry",
		"version": "1.0.0",
	})
}

// Magic citizen ID ranges let local runs and manual tests drive the mock's
// behavior:
//
//	ids ending in 404 -> citizen not found (rejection)
//	ids ending in 409 -> document already registered (rejection)
//	ids ending in 500 -> registry outage
//	ids ending in 429 -> rate limited
//	everything else   -> authenticated
func handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(latencyMs) * time.Millisecond)

	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use PUT")
		return
	}
	if r.Header.Get("X-API-Key") != apiKey {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
		return
	}

	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.IDCitizen <= 0 || req.URLDocument == "" || req.DocumentTitle == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "idCitizen, urlDocument and documentTitle are required")
		return
	}

	switch req.IDCitizen % 1000 {
	case 404:
		writeError(w, http.StatusNotFound, "not_found", "Citizen not found in government registry")
	case 409:
		writeError(w, http.StatusConflict, "conflict", "Document already registered for another citizen")
	case 500:
		writeError(w, http.StatusInternalServerError, "internal", "registry database unavailable")
	case 429:
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(AuthenticateResponse{
			IDCitizen:     req.IDCitizen,
			DocumentTitle: req.DocumentTitle,
			Authentic:     true,
			CheckedAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Message: message})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	raw := getEnv(key, fallback)
	value, err := strconv.Atoi(raw)
	if err != nil {
		value, _ = strconv.Atoi(fallback)
	}
	return value
}
