package replay

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Log is an append-only, SQLite-backed recording of one run: a header,
// every tick's inputs in order, and periodic full-state snapshots for
// fast-forward (design doc Section 6). Grounded on the teacher's
// internal/persistence/db.go (sqlx.Open + migrate-on-open schema,
// full-replace/append writer methods); unlike the teacher's save-game
// tables this log is append-only and never deletes a row, since a
// replay must reproduce every tick that was ever recorded.
type Log struct {
	conn *sqlx.DB
}

// OpenLog opens or creates the replay log database at path.
func OpenLog(path string) (*Log, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open replay log: %w", err)
	}
	l := &Log{conn: conn}
	if err := l.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate replay log: %w", err)
	}
	return l, nil
}

func (l *Log) Close() error { return l.conn.Close() }

func (l *Log) migrate() error {
	_, err := l.conn.Exec(`
	CREATE TABLE IF NOT EXISTS replay_header (
		replay_id TEXT PRIMARY KEY,
		manifest_hash TEXT NOT NULL,
		simulation_version TEXT NOT NULL,
		initial_state_hash INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_inputs (
		tick INTEGER PRIMARY KEY,
		players_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		tick INTEGER PRIMARY KEY,
		checksum INTEGER NOT NULL,
		state_blob BLOB NOT NULL
	);
	`)
	return err
}

// WriteHeader records the replay's header. Called once, at recording
// start.
func (l *Log) WriteHeader(h Header) error {
	_, err := l.conn.Exec(`
		INSERT INTO replay_header (replay_id, manifest_hash, simulation_version, initial_state_hash)
		VALUES (?, ?, ?, ?)`,
		h.ReplayID.String(), h.ManifestHash, h.SimulationVersion, int64(h.InitialStateHash))
	return err
}

// ReadHeader loads the recorded header.
func (l *Log) ReadHeader() (Header, error) {
	var row struct {
		ReplayID          string `db:"replay_id"`
		ManifestHash      string `db:"manifest_hash"`
		SimulationVersion string `db:"simulation_version"`
		InitialStateHash  int64  `db:"initial_state_hash"`
	}
	if err := l.conn.Get(&row, `SELECT replay_id, manifest_hash, simulation_version, initial_state_hash FROM replay_header`); err != nil {
		return Header{}, err
	}
	id, err := uuid.Parse(row.ReplayID)
	if err != nil {
		return Header{}, fmt.Errorf("parse replay id: %w", err)
	}
	return Header{
		ReplayID:          id,
		ManifestHash:      row.ManifestHash,
		SimulationVersion: row.SimulationVersion,
		InitialStateHash:  uint64(row.InitialStateHash),
	}, nil
}

// AppendTick records one tick's inputs. Ticks must be appended in
// strictly increasing order — the orchestrator owns that guarantee,
// this method just persists what it's given.
func (l *Log) AppendTick(in TickInputs) error {
	blob, err := json.Marshal(in.Players)
	if err != nil {
		return fmt.Errorf("marshal tick %d players: %w", in.Tick, err)
	}
	_, err = l.conn.Exec(`INSERT INTO tick_inputs (tick, players_json) VALUES (?, ?)`, in.Tick, string(blob))
	return err
}

// ReadTick loads the recorded inputs for tick.
func (l *Log) ReadTick(tick uint64) (TickInputs, error) {
	var row struct {
		Tick        uint64 `db:"tick"`
		PlayersJSON string `db:"players_json"`
	}
	if err := l.conn.Get(&row, `SELECT tick, players_json FROM tick_inputs WHERE tick = ?`, tick); err != nil {
		return TickInputs{}, err
	}
	var players []PlayerInputs
	if err := json.Unmarshal([]byte(row.PlayersJSON), &players); err != nil {
		return TickInputs{}, fmt.Errorf("unmarshal tick %d players: %w", tick, err)
	}
	return TickInputs{Tick: row.Tick, Players: players}, nil
}

// SnapshotCadence reports whether tick is one of the periodic
// full-state snapshot points a fast-forward reader can jump to.
type SnapshotCadence struct {
	EveryNTicks uint64
}

func (c SnapshotCadence) Due(tick uint64) bool {
	if c.EveryNTicks == 0 {
		return false
	}
	return tick%c.EveryNTicks == 0
}

// AppendSnapshot records a full serialised WorldState at tick, along
// with the checksum computed for it, so a reader can fast-forward to
// tick without replaying every prior command.
func (l *Log) AppendSnapshot(tick uint64, checksum uint64, stateBlob []byte) error {
	_, err := l.conn.Exec(`INSERT INTO snapshots (tick, checksum, state_blob) VALUES (?, ?, ?)`,
		tick, checksum, stateBlob)
	return err
}

// LatestSnapshotBefore returns the most recent recorded snapshot at or
// before tick, for fast-forward replay.
func (l *Log) LatestSnapshotBefore(tick uint64) (snapTick uint64, checksum uint64, stateBlob []byte, err error) {
	var row struct {
		Tick      uint64 `db:"tick"`
		Checksum  uint64 `db:"checksum"`
		StateBlob []byte `db:"state_blob"`
	}
	err = l.conn.Get(&row, `
		SELECT tick, checksum, state_blob FROM snapshots
		WHERE tick <= ? ORDER BY tick DESC LIMIT 1`, tick)
	if err != nil {
		return 0, 0, nil, err
	}
	return row.Tick, row.Checksum, row.StateBlob, nil
}
