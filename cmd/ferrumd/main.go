// Command ferrumd runs the FERRUM persistent world server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ferrum-mmo/engine/internal/api"
	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/config"
	"github.com/ferrum-mmo/engine/internal/engine"
	"github.com/ferrum-mmo/engine/internal/entropy"
	"github.com/ferrum-mmo/engine/internal/persistence"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

// starterSpots puts one founding village in each corner start zone.
var starterSpots = []struct {
	Name  string
	Lord  string
	Coord world.Coord
}{
	{"Gniezno", "Mieszko Piast", world.Coord{X: 10, Y: 10}},
	{"Kruszwica", "Siemowit Popielid", world.Coord{X: 10, Y: 89}},
	{"Poznań", "Bolesław Wielkopolski", world.Coord{X: 89, Y: 10}},
	{"Kalisz", "Leszek Kaliski", world.Coord{X: 89, Y: 89}},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("FERRUM — persistent world server")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// ── Balance tables ────────────────────────────────────────────────
	tbl := balance.Default()
	if cfg.BalanceFile != "" {
		tbl, err = balance.LoadFile(cfg.BalanceFile)
		if err != nil {
			slog.Error("failed to load balance file", "path", cfg.BalanceFile, "error", err)
			os.Exit(1)
		}
		slog.Info("balance tables loaded", "path", cfg.BalanceFile)
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── World map (deterministic from seed) ───────────────────────────
	seed := cfg.WorldSeed
	if stored, err := db.GetMeta("seed"); err == nil {
		if s, err := strconv.ParseInt(stored, 10, 64); err == nil {
			seed = s
		}
	} else {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		if err := db.SaveMeta("seed", strconv.FormatInt(seed, 10)); err != nil {
			slog.Error("failed to persist world seed", "error", err)
			os.Exit(1)
		}
	}

	worldMap := world.Generate(seed)
	for t, c := range world.TerrainCounts(worldMap) {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}

	// ── Load or generate world state ──────────────────────────────────
	villages, err := db.LoadVillages()
	if err != nil {
		slog.Error("failed to load villages", "error", err)
		os.Exit(1)
	}

	// The map is deterministic from the seed; live outcomes are not.
	rng := entropy.System()
	st := engine.NewState(worldMap, villages)
	orch := engine.NewOrchestrator(tbl, rng, st)
	now := time.Now().UnixMilli()

	fresh := len(villages) == 0
	if fresh {
		slog.Info("no saved state found, founding a new world", "seed", seed)

		for _, spot := range starterSpots {
			ownerID := uuid.NewString()
			v := newStarterVillage(tbl, spot.Name, ownerID, spot.Coord, now)
			st.AddVillage(v)
			lord := orch.AssignLord(ownerID, spot.Lord, now)
			slog.Info("village founded",
				"name", v.Name,
				"x", v.Position.X,
				"y", v.Position.Y,
				"lord", lord.Name,
				"traits", lord.Traits,
			)
		}

		placed := orch.SeedBarbarians(cfg.Barbarians, now)
		slog.Info("barbarian camps seeded", "count", placed)
	} else {
		if armies, err := db.LoadArmies(); err == nil {
			for _, a := range armies {
				st.Armies[a.ID] = a
			}
		}
		if lords, err := db.LoadLords(); err == nil {
			st.Lords = lords
		}
		if vassals, err := db.LoadVassalages(); err == nil {
			st.Vassals = vassals
		}
		if reports, err := db.LoadReports(100); err == nil {
			st.Reports = reports
		}
		slog.Info("world state restored",
			"villages", len(st.Villages),
			"armies", len(st.Armies),
			"lords", len(st.Lords),
			"vassalages", len(st.Vassals),
		)
	}

	if fresh {
		if err := saveWorld(db, orch, now); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Driver and periodic saves ─────────────────────────────────────
	driver := engine.NewDriver(orch)
	driver.Interval = cfg.TickInterval

	saveTicker := time.NewTicker(cfg.SaveInterval)
	defer saveTicker.Stop()
	go func() {
		for range saveTicker.C {
			if err := saveWorld(db, orch, time.Now().UnixMilli()); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}()

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("FERRUM_ADMIN_KEY not set — POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Orch:     orch,
		Driver:   driver,
		DB:       db,
		Addr:     cfg.ListenAddr,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		driver.Stop()
	}()

	fmt.Printf("\nFERRUM world %d is live: %d villages on a %d×%d grid.\n",
		seed, len(st.Villages), world.GridSize, world.GridSize)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.ListenAddr)
	fmt.Println("Starting world... (Ctrl+C to stop)")

	driver.Run()

	slog.Info("final save...")
	if err := saveWorld(db, orch, time.Now().UnixMilli()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("World stopped. State saved.")
}

// newStarterVillage founds a village with the starting stock and an empty
// build plot.
func newStarterVillage(tbl *balance.Table, name, ownerID string, pos world.Coord, now int64) *village.Village {
	owner := ownerID
	return &village.Village{
		ID:         uuid.NewString(),
		Name:       name,
		OwnerID:    &owner,
		Kind:       village.KindPlayer,
		Position:   pos,
		Resources:  tbl.StartingResources,
		LastUpdate: now,
		Buildings:  map[string]int{},
		Garrison:   map[string]int64{},
		Loyalty:    100,
	}
}

// saveWorld snapshots the aggregate under the read lock.
func saveWorld(db *persistence.DB, orch *engine.Orchestrator, now int64) error {
	events := orch.DrainEvents()
	var err error
	orch.View(func(st *engine.State) {
		err = db.SaveWorldState(st, events, now)
	})
	return err
}
