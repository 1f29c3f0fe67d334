// Package api provides the HTTP API for the game world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/engine"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/persistence"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

// actionRateLimit caps player actions per IP per minute.
const actionRateLimit = 60

// Server serves the world state over HTTP.
type Server struct {
	Orch     *engine.Orchestrator
	Driver   *engine.Driver
	DB       *persistence.DB
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	started time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.started = time.Now()
	actionLimiter := NewRateLimiter(actionRateLimit, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/villages", s.handleVillages)
	mux.HandleFunc("/api/v1/village/", RateLimitMiddleware(actionLimiter, s.handleVillageRoutes))
	mux.HandleFunc("/api/v1/armies", s.handleArmies)
	mux.HandleFunc("/api/v1/reports", s.handleReports)
	mux.HandleFunc("/api/v1/lords", s.handleLords)
	mux.HandleFunc("/api/v1/vassals", s.handleVassals)
	mux.HandleFunc("/api/v1/ransom", s.authOnly(s.handleRansom))
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/map", s.handleMap)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/speed", s.authOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/pause", s.authOnly(s.handlePause))
	mux.HandleFunc("/api/v1/snapshot", s.authOnly(s.handleSnapshot))

	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(s.Addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return auth == "Bearer "+s.AdminKey
}

// authOnly guards POST handlers behind the bearer token.
func (s *Server) authOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "write endpoints disabled (no FERRUM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var (
		players    int
		barbarians int
		totalStock int64
		armies     int
		reports    int
		vassals    int
	)
	s.Orch.View(func(st *engine.State) {
		for _, v := range st.Villages {
			if v.Kind == village.KindBarbarian {
				barbarians++
			} else {
				players++
			}
			totalStock += v.Resources.Total()
		}
		armies = len(st.Armies)
		reports = len(st.Reports)
		vassals = len(st.Vassals)
	})

	status := map[string]any{
		"name":            "FERRUM",
		"started":         humanize.Time(s.started),
		"speed":           s.Driver.Speed(),
		"villages":        players,
		"barbarian_camps": barbarians,
		"armies_in_field": armies,
		"battle_reports":  reports,
		"vassalages":      vassals,
		"total_resources": humanize.Comma(totalStock),
	}
	writeJSON(w, status)
}

func (s *Server) handleVillages(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		OwnerID    *string `json:"owner_id,omitempty"`
		Barbarian  bool   `json:"barbarian,omitempty"`
		X          int    `json:"x"`
		Y          int    `json:"y"`
		Loyalty    int    `json:"loyalty"`
		Population int64  `json:"population"`
		Garrison   int64  `json:"garrison"`
	}

	var out []entry
	s.Orch.View(func(st *engine.State) {
		for _, v := range st.Villages {
			out = append(out, entry{
				ID:         v.ID,
				Name:       v.Name,
				OwnerID:    v.OwnerID,
				Barbarian:  v.Kind == village.KindBarbarian,
				X:          v.Position.X,
				Y:          v.Position.Y,
				Loyalty:    v.Loyalty,
				Population: v.Population,
				Garrison:   v.GarrisonCount(),
			})
		}
	})
	writeJSON(w, out)
}

// handleVillageRoutes dispatches /api/v1/village/{id} and the action
// endpoints nested under it.
func (s *Server) handleVillageRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/village/")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		http.Error(w, "village id required", http.StatusBadRequest)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		s.handleVillageDetail(w, r, id)
		return
	}

	switch parts[1] {
	case "build":
		s.authOnly(func(w http.ResponseWriter, r *http.Request) { s.handleBuild(w, r, id) })(w, r)
	case "recruit":
		s.authOnly(func(w http.ResponseWriter, r *http.Request) { s.handleRecruit(w, r, id) })(w, r)
	case "attack":
		s.authOnly(func(w http.ResponseWriter, r *http.Request) { s.handleAttack(w, r, id) })(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleVillageDetail(w http.ResponseWriter, r *http.Request, id string) {
	now := time.Now().UnixMilli()
	if err := s.Orch.ReconcileVillage(id, now); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	var detail map[string]any
	s.Orch.View(func(st *engine.State) {
		v := st.Villages[id]
		if v == nil {
			return
		}
		detail = map[string]any{
			"id":            v.ID,
			"name":          v.Name,
			"owner_id":      v.OwnerID,
			"position":      v.Position,
			"resources":     v.Resources,
			"buildings":     v.Buildings,
			"build_queue":   v.BuildQueue,
			"recruit_queue": v.RecruitQueue,
			"garrison":      v.Garrison,
			"population":    v.Population,
			"loyalty":       v.Loyalty,
			"last_update":   v.LastUpdate,
		}
	})
	if detail == nil {
		http.Error(w, "village not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Building string `json:"building"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.Orch.EnqueueBuild(id, req.Building, time.Now().UnixMilli(), village.Bonus{}); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]string{"status": "queued"})
}

func (s *Server) handleRecruit(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Unit  string `json:"unit"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.Orch.EnqueueRecruitment(id, req.Unit, req.Count, time.Now().UnixMilli(), village.Bonus{}); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]string{"status": "queued"})
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		X      int              `json:"x"`
		Y      int              `json:"y"`
		Units  map[string]int64 `json:"units"`
		Tactic string           `json:"tactic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	army, err := s.Orch.DispatchArmy(id, world.Coord{X: req.X, Y: req.Y}, req.Units, military.Tactic(req.Tactic), time.Now().UnixMilli())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]any{
		"army_id":    army.ID,
		"arrival":    army.Arrival,
		"arrives_in": humanize.Time(time.UnixMilli(*army.Arrival)),
	})
}

func (s *Server) handleArmies(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID        string       `json:"id"`
		VillageID string       `json:"village_id"`
		Units     int64        `json:"units"`
		Status    string       `json:"status"`
		Tactic    string       `json:"tactic"`
		Target    *world.Coord `json:"target,omitempty"`
		Arrival   *int64       `json:"arrival,omitempty"`
	}

	var out []entry
	s.Orch.View(func(st *engine.State) {
		for _, a := range st.Armies {
			out = append(out, entry{
				ID:        a.ID,
				VillageID: a.VillageID,
				Units:     a.TotalUnits(),
				Status:    military.StatusName(a.Status),
				Tactic:    string(a.Tactic),
				Target:    a.Target,
				Arrival:   a.Arrival,
			})
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	var out []*engine.BattleReport
	s.Orch.View(func(st *engine.State) {
		start := 0
		if len(st.Reports) > 50 {
			start = len(st.Reports) - 50
		}
		out = append(out, st.Reports[start:]...)
	})
	writeJSON(w, out)
}

func (s *Server) handleLords(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any)
	s.Orch.View(func(st *engine.State) {
		for ownerID, l := range st.Lords {
			out[ownerID] = map[string]any{
				"name":       l.Name,
				"dna":        l.DNA,
				"traits":     l.Traits,
				"flaws":      l.Flaws,
				"birth_date": l.BirthDate,
				"death_date": l.DeathDate,
				"experience": l.Experience,
			}
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleVassals(w http.ResponseWriter, r *http.Request) {
	var out []any
	s.Orch.View(func(st *engine.State) {
		for _, vs := range st.Vassals {
			out = append(out, vs)
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleRansom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		VassalID string `json:"vassal_id"`
		Amount   int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.Orch.PayRansom(req.VassalID, req.Amount, time.Now().UnixMilli()); err != nil {
		http.Error(w, "no active vassalage for "+req.VassalID, http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"status": "paid"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Orch.RecentEvents(100))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var out map[string]any
	s.Orch.View(func(st *engine.State) {
		if st.Map == nil {
			return
		}
		counts := world.TerrainCounts(st.Map)
		terrain := make(map[string]int, len(counts))
		for t, n := range counts {
			terrain[world.TerrainName(t)] = n
		}
		out = map[string]any{
			"size":    world.GridSize,
			"seed":    st.Map.Seed,
			"terrain": terrain,
		}
	})
	if out == nil {
		http.Error(w, "no map", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Driver.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Driver.Speed()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Paused bool `json:"paused"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		s.Orch.SetPaused(req.Paused)
		slog.Info("pause toggled", "paused", req.Paused)
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}

	now := time.Now().UnixMilli()
	var err error
	s.Orch.View(func(st *engine.State) {
		err = s.DB.SaveWorldState(st, nil, now)
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("snapshot failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"status": "saved", "at": now})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrVillageNotFound):
		return http.StatusNotFound
	case errors.Is(err, village.ErrInsufficientResources),
		errors.Is(err, village.ErrCapacityExceeded),
		errors.Is(err, village.ErrAlreadyMaxLevel),
		errors.Is(err, village.ErrPopulationCapacityExceeded),
		errors.Is(err, engine.ErrNotEnoughTroops):
		return http.StatusConflict
	case errors.Is(err, military.ErrInvalidTarget),
		errors.Is(err, military.ErrEmptyForce),
		errors.Is(err, balance.ErrUnknownKind):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
