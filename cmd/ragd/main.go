// ragd serves the configured bots over HTTP.
//
//	POST /bots/{name}/query   {"session_id": "...", "query": "..."}
//	POST /bots/{name}/clear   {"session_id": "..."}
//	GET  /bots
//
// Personas are loaded from -configs at startup; a broken file aborts startup.
// API keys and connection strings come from the environment.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	rag "github.com/berkincetin/agentic-rag-framework"
)

var (
	flagConfigs  = flag.String("configs", "configs", "Directory of persona YAML files")
	flagAddr     = flag.String("addr", ":8080", "HTTP listen address")
	flagLogLevel = flag.String("log-level", "info", "Log level: debug|info|warn|error")
	flagPretty   = flag.Bool("pretty", false, "Human-readable log output")
)

func main() {
	flag.Parse()

	logger := buildLogger(*flagLogLevel, *flagPretty)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	fw, err := rag.NewFrameworkFromDir(ctx, *flagConfigs, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *flagConfigs).Msg("loading personas failed")
	}

	srv := &http.Server{
		Addr:              *flagAddr,
		Handler:           newHandler(fw, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *flagAddr).Strs("bots", fw.Names()).Msg("ragd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
	logger.Info().Msg("ragd stopped")
}

func buildLogger(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

type queryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newHandler(fw *rag.Framework, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /bots", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"bots": fw.Names()})
	})

	mux.HandleFunc("POST /bots/{name}/query", func(w http.ResponseWriter, r *http.Request) {
		bot, ok := fw.Bot(r.PathValue("name"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown bot"})
			return
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
			return
		}
		if strings.TrimSpace(req.SessionID) == "" {
			req.SessionID = "default"
		}

		answer, err := bot.Query(r.Context(), req.SessionID, req.Query)
		if err != nil {
			logger.Error().Err(err).Str("bot", bot.Name()).Msg("query failed")
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, answer)
	})

	mux.HandleFunc("POST /bots/{name}/clear", func(w http.ResponseWriter, r *http.Request) {
		bot, ok := fw.Bot(r.PathValue("name"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown bot"})
			return
		}

		var req clearRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if strings.TrimSpace(req.SessionID) == "" {
			req.SessionID = "default"
		}

		bot.ClearMemory(req.SessionID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": req.SessionID})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
