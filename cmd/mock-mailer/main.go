package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/phegon/phegonbank/internal/logging"
)

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func main() {
	logging.Init("mock-mailer", "info", os.Getenv("APP_ENV"))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /send", func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		slog.Info("mail accepted",
			"from", req.From,
			"to", req.To,
			"subject", req.Subject,
			"body_bytes", len(req.Body),
		)
		w.WriteHeader(http.StatusAccepted)
	})

	slog.Info("mock mailer started", "addr", ":8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
