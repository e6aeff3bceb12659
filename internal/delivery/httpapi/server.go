package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"chessmonitor/internal/application"
	"chessmonitor/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

// Server exposes the monitor over HTTP: pull-based snapshot and status reads,
// monitor control, watch-list management, the Excel report, and a websocket
// stream pushed on every cycle completion.
type Server struct {
	services *application.Service
	logger   application.Logger
	hub      *hub
	upgrader websocket.Upgrader
}

func NewServer(services *application.Service, logger application.Logger) *Server {
	s := &Server{
		services: services,
		logger:   logger,
		hub:      newHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	services.Monitor.OnCycle(s.hub.broadcast)
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/games", s.handleRecentGames)

		r.Post("/monitor", s.handleStartMonitor)
		r.Delete("/monitor", s.handleStopMonitor)

		r.Get("/watchlist", s.handleGetWatchlist)
		r.Post("/watchlist", s.handleAddToWatchlist)
		r.Delete("/watchlist/{name}", s.handleRemoveFromWatchlist)

		r.Get("/standings.xlsx", s.handleStandingsReport)
		r.Post("/sync-sheet", s.handleSyncSheet)
	})

	r.Get("/ws", s.handleWebsocket)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.services.Monitor.State())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := s.services.Monitor.Snapshot()
	if snapshot == nil {
		s.writeError(w, http.StatusNotFound, application.ErrNoSnapshot.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.services.Monitor.RecentGames()
	if err != nil {
		if errors.Is(err, application.ErrNoTarget) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to list games: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]models.Game{"games": games})
}

type startMonitorRequest struct {
	TournamentID int `json:"tournament_id"`
	Round        int `json:"round"`
}

func (s *Server) handleStartMonitor(w http.ResponseWriter, r *http.Request) {
	var req startMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.services.Monitor.Start(req.TournamentID, req.Round); err != nil {
		if errors.Is(err, application.ErrInvalidTarget) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to start monitoring: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to start monitoring")
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "monitoring"})
}

func (s *Server) handleStopMonitor(w http.ResponseWriter, r *http.Request) {
	s.services.Monitor.Stop()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	names, err := s.services.Monitor.Watchlist()
	if err != nil {
		s.logger.Error("failed to read watch list: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to read watch list")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"watchlist": names})
}

type watchlistRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.services.Monitor.AddToWatchlist(req.Name); err != nil {
		if errors.Is(err, application.ErrBlankPlayerName) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to add to watch list: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to update watch list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.services.Monitor.RemoveFromWatchlist(name); err != nil {
		if errors.Is(err, application.ErrBlankPlayerName) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to remove from watch list: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to update watch list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStandingsReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.services.Monitor.StandingsReport()
	if err != nil {
		if errors.Is(err, application.ErrNoSnapshot) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to build standings report: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	w.Write(report)
}

func (s *Server) handleSyncSheet(w http.ResponseWriter, r *http.Request) {
	url, err := s.services.Monitor.SyncStandingsToSheet()
	if err != nil {
		if errors.Is(err, application.ErrSheetsNotConfigured) || errors.Is(err, application.ErrNoSnapshot) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("failed to sync standings sheet: %s", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to sync sheet")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %s", err.Error())
		return
	}
	// Push the current snapshot right away so new clients don't wait a cycle.
	// The write must happen before registration: once the conn is in the hub,
	// only broadcast may write to it, or two goroutines race on the same conn.
	if snapshot := s.services.Monitor.Snapshot(); snapshot != nil {
		if err := conn.WriteJSON(snapshot); err != nil {
			conn.Close()
			return
		}
	}
	s.hub.register(conn)

	go func() {
		defer s.hub.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response: %s", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
