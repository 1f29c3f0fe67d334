// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ferrum-mmo/engine/internal/dynasty"
	"github.com/ferrum-mmo/engine/internal/economy"
	"github.com/ferrum-mmo/engine/internal/engine"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS villages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_id TEXT,
		kind INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		resources_json TEXT NOT NULL,
		last_update INTEGER NOT NULL,
		buildings_json TEXT NOT NULL,
		build_queue_json TEXT NOT NULL,
		recruit_queue_json TEXT NOT NULL,
		garrison_json TEXT NOT NULL,
		population INTEGER NOT NULL,
		loyalty INTEGER NOT NULL,
		level INTEGER NOT NULL,
		last_action INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS armies (
		id TEXT PRIMARY KEY,
		village_id TEXT NOT NULL,
		units_json TEXT NOT NULL,
		origin_x INTEGER NOT NULL,
		origin_y INTEGER NOT NULL,
		target_x INTEGER,
		target_y INTEGER,
		arrival INTEGER,
		status INTEGER NOT NULL,
		tactic TEXT NOT NULL,
		travel_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lords (
		owner_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		dna TEXT NOT NULL,
		traits_json TEXT NOT NULL,
		flaws_json TEXT NOT NULL,
		birth_date INTEGER NOT NULL,
		death_date INTEGER NOT NULL,
		experience INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vassalages (
		id TEXT PRIMARY KEY,
		suzerain_id TEXT NOT NULL,
		vassal_id TEXT NOT NULL,
		tribute_rate REAL NOT NULL,
		total_ransom INTEGER NOT NULL,
		paid_ransom INTEGER NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battle_reports (
		id TEXT PRIMARY KEY,
		attacker_village_id TEXT NOT NULL,
		defender_village_id TEXT NOT NULL,
		winner INTEGER NOT NULL,
		attacker_tactic TEXT NOT NULL,
		defender_tactic TEXT NOT NULL,
		attacker_losses_json TEXT NOT NULL,
		defender_losses_json TEXT NOT NULL,
		desertion INTEGER NOT NULL,
		plunder_json TEXT NOT NULL,
		loyalty_delta INTEGER NOT NULL,
		prisoners INTEGER NOT NULL,
		narrative_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
	CREATE INDEX IF NOT EXISTS idx_villages_owner ON villages(owner_id);
	CREATE INDEX IF NOT EXISTS idx_reports_defender ON battle_reports(defender_village_id);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON battle_reports(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveVillages writes all villages to the database (full replace).
func (db *DB) SaveVillages(villages []*village.Village) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM villages"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO villages
		(id, name, owner_id, kind, x, y, resources_json, last_update,
		 buildings_json, build_queue_json, recruit_queue_json, garrison_json,
		 population, loyalty, level, last_action)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range villages {
		resJSON, _ := json.Marshal(v.Resources)
		bldJSON, _ := json.Marshal(v.Buildings)
		bqJSON, _ := json.Marshal(v.BuildQueue)
		rqJSON, _ := json.Marshal(v.RecruitQueue)
		garJSON, _ := json.Marshal(v.Garrison)

		_, err := stmt.Exec(
			v.ID, v.Name, v.OwnerID, v.Kind, v.Position.X, v.Position.Y,
			string(resJSON), v.LastUpdate,
			string(bldJSON), string(bqJSON), string(rqJSON), string(garJSON),
			v.Population, v.Loyalty, v.Level, v.LastAction,
		)
		if err != nil {
			return fmt.Errorf("insert village %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// LoadVillages reads every stored village.
func (db *DB) LoadVillages() ([]*village.Village, error) {
	rows, err := db.conn.Queryx(`SELECT id, name, owner_id, kind, x, y,
		resources_json, last_update, buildings_json, build_queue_json,
		recruit_queue_json, garrison_json, population, loyalty, level, last_action
		FROM villages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*village.Village
	for rows.Next() {
		var (
			v                                   village.Village
			resJSON, bldJSON, bqJSON, rqJSON, garJSON string
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.OwnerID, &v.Kind,
			&v.Position.X, &v.Position.Y, &resJSON, &v.LastUpdate,
			&bldJSON, &bqJSON, &rqJSON, &garJSON,
			&v.Population, &v.Loyalty, &v.Level, &v.LastAction); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(resJSON), &v.Resources); err != nil {
			return nil, fmt.Errorf("village %s resources: %w", v.ID, err)
		}
		json.Unmarshal([]byte(bldJSON), &v.Buildings)
		json.Unmarshal([]byte(bqJSON), &v.BuildQueue)
		json.Unmarshal([]byte(rqJSON), &v.RecruitQueue)
		json.Unmarshal([]byte(garJSON), &v.Garrison)
		if v.Buildings == nil {
			v.Buildings = make(map[string]int)
		}
		if v.Garrison == nil {
			v.Garrison = make(map[string]int64)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// SaveArmies writes all armies in flight (full replace).
func (db *DB) SaveArmies(armies []*military.Army) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM armies"); err != nil {
		return err
	}

	for _, a := range armies {
		unitsJSON, _ := json.Marshal(a.Units)
		var targetX, targetY *int
		if a.Target != nil {
			targetX, targetY = &a.Target.X, &a.Target.Y
		}
		_, err := tx.Exec(`INSERT INTO armies
			(id, village_id, units_json, origin_x, origin_y, target_x, target_y,
			 arrival, status, tactic, travel_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.VillageID, string(unitsJSON),
			a.Origin.X, a.Origin.Y, targetX, targetY,
			a.Arrival, a.Status, string(a.Tactic), a.TravelMs,
		)
		if err != nil {
			return fmt.Errorf("insert army %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadArmies reads every stored army.
func (db *DB) LoadArmies() ([]*military.Army, error) {
	rows, err := db.conn.Queryx(`SELECT id, village_id, units_json,
		origin_x, origin_y, target_x, target_y, arrival, status, tactic, travel_ms
		FROM armies`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*military.Army
	for rows.Next() {
		var (
			a                military.Army
			unitsJSON        string
			targetX, targetY *int
			tactic           string
		)
		if err := rows.Scan(&a.ID, &a.VillageID, &unitsJSON,
			&a.Origin.X, &a.Origin.Y, &targetX, &targetY,
			&a.Arrival, &a.Status, &tactic, &a.TravelMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(unitsJSON), &a.Units); err != nil {
			return nil, fmt.Errorf("army %s units: %w", a.ID, err)
		}
		a.Tactic = military.Tactic(tactic)
		if targetX != nil && targetY != nil {
			a.Target = &world.Coord{X: *targetX, Y: *targetY}
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// SaveLords writes all ruling lords keyed by owner (full replace).
func (db *DB) SaveLords(lords map[string]*dynasty.Lord) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM lords"); err != nil {
		return err
	}

	for ownerID, l := range lords {
		traitsJSON, _ := json.Marshal(l.Traits)
		flawsJSON, _ := json.Marshal(l.Flaws)
		_, err := tx.Exec(`INSERT INTO lords
			(owner_id, name, dna, traits_json, flaws_json, birth_date, death_date, experience)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ownerID, l.Name, l.DNA, string(traitsJSON), string(flawsJSON),
			l.BirthDate, l.DeathDate, l.Experience,
		)
		if err != nil {
			return fmt.Errorf("insert lord %s: %w", ownerID, err)
		}
	}

	return tx.Commit()
}

// LoadLords reads every stored lord keyed by owner.
func (db *DB) LoadLords() (map[string]*dynasty.Lord, error) {
	rows, err := db.conn.Queryx(`SELECT owner_id, name, dna, traits_json,
		flaws_json, birth_date, death_date, experience FROM lords`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*dynasty.Lord)
	for rows.Next() {
		var (
			ownerID, traitsJSON, flawsJSON string
			l                              dynasty.Lord
		)
		if err := rows.Scan(&ownerID, &l.Name, &l.DNA, &traitsJSON,
			&flawsJSON, &l.BirthDate, &l.DeathDate, &l.Experience); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(traitsJSON), &l.Traits)
		json.Unmarshal([]byte(flawsJSON), &l.Flaws)
		out[ownerID] = &l
	}
	return out, rows.Err()
}

// SaveVassalages writes the diplomacy ledger (full replace).
func (db *DB) SaveVassalages(vassals []*economy.Vassalage) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vassalages"); err != nil {
		return err
	}

	for _, vs := range vassals {
		_, err := tx.Exec(`INSERT INTO vassalages
			(id, suzerain_id, vassal_id, tribute_rate, total_ransom, paid_ransom, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			vs.ID, vs.SuzerainID, vs.VassalID,
			vs.TributeRate, vs.TotalRansom, vs.PaidRansom, string(vs.Status),
		)
		if err != nil {
			return fmt.Errorf("insert vassalage %s: %w", vs.ID, err)
		}
	}

	return tx.Commit()
}

// LoadVassalages reads the diplomacy ledger.
func (db *DB) LoadVassalages() ([]*economy.Vassalage, error) {
	rows, err := db.conn.Queryx(`SELECT id, suzerain_id, vassal_id,
		tribute_rate, total_ransom, paid_ransom, status FROM vassalages`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*economy.Vassalage
	for rows.Next() {
		var (
			vs     economy.Vassalage
			status string
		)
		if err := rows.Scan(&vs.ID, &vs.SuzerainID, &vs.VassalID,
			&vs.TributeRate, &vs.TotalRansom, &vs.PaidRansom, &status); err != nil {
			return nil, err
		}
		vs.Status = economy.VassalStatus(status)
		out = append(out, &vs)
	}
	return out, rows.Err()
}

// SaveReports appends battle reports that are not yet stored.
func (db *DB) SaveReports(reports []*engine.BattleReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range reports {
		atkJSON, _ := json.Marshal(r.AttackerLosses)
		defJSON, _ := json.Marshal(r.DefenderLosses)
		plunderJSON, _ := json.Marshal(r.Plunder)
		narrativeJSON, _ := json.Marshal(r.Narrative)
		_, err := tx.Exec(`INSERT OR IGNORE INTO battle_reports
			(id, attacker_village_id, defender_village_id, winner,
			 attacker_tactic, defender_tactic, attacker_losses_json,
			 defender_losses_json, desertion, plunder_json, loyalty_delta,
			 prisoners, narrative_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.AttackerVillageID, r.DefenderVillageID, r.Winner,
			string(r.AttackerTactic), string(r.DefenderTactic),
			string(atkJSON), string(defJSON), r.Desertion, string(plunderJSON),
			r.LoyaltyDelta, r.Prisoners, string(narrativeJSON), r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert report %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// LoadReports reads the most recent battle reports, newest first.
func (db *DB) LoadReports(limit int) ([]*engine.BattleReport, error) {
	rows, err := db.conn.Queryx(`SELECT id, attacker_village_id,
		defender_village_id, winner, attacker_tactic, defender_tactic,
		attacker_losses_json, defender_losses_json, desertion, plunder_json,
		loyalty_delta, prisoners, narrative_json, created_at
		FROM battle_reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.BattleReport
	for rows.Next() {
		var (
			r                                          engine.BattleReport
			atkTactic, defTactic                       string
			atkJSON, defJSON, plunderJSON, narrJSON string
		)
		if err := rows.Scan(&r.ID, &r.AttackerVillageID, &r.DefenderVillageID,
			&r.Winner, &atkTactic, &defTactic, &atkJSON, &defJSON,
			&r.Desertion, &plunderJSON, &r.LoyaltyDelta, &r.Prisoners,
			&narrJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.AttackerTactic = military.Tactic(atkTactic)
		r.DefenderTactic = military.Tactic(defTactic)
		json.Unmarshal([]byte(atkJSON), &r.AttackerLosses)
		json.Unmarshal([]byte(defJSON), &r.DefenderLosses)
		json.Unmarshal([]byte(plunderJSON), &r.Plunder)
		json.Unmarshal([]byte(narrJSON), &r.Narrative)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (time, description, category) VALUES (?, ?, ?)",
			e.Time, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT time, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState performs a full save of all world state.
func (db *DB) SaveWorldState(st *engine.State, events []engine.Event, now int64) error {
	villages := make([]*village.Village, 0, len(st.Villages))
	for _, v := range st.Villages {
		villages = append(villages, v)
	}
	armies := make([]*military.Army, 0, len(st.Armies))
	for _, a := range st.Armies {
		armies = append(armies, a)
	}

	slog.Info("saving world state", "villages", len(villages), "armies", len(armies))

	if err := db.SaveVillages(villages); err != nil {
		return fmt.Errorf("save villages: %w", err)
	}
	if err := db.SaveArmies(armies); err != nil {
		return fmt.Errorf("save armies: %w", err)
	}
	if err := db.SaveLords(st.Lords); err != nil {
		return fmt.Errorf("save lords: %w", err)
	}
	if err := db.SaveVassalages(st.Vassals); err != nil {
		return fmt.Errorf("save vassalages: %w", err)
	}
	if err := db.SaveReports(st.Reports); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_save", fmt.Sprintf("%d", now)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}
