package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tripcraft/tripcraft/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS trips (
	id           TEXT PRIMARY KEY,
	request      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'created',
	error        TEXT,
	verification TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS trip_results (
	trip_id    TEXT NOT NULL REFERENCES trips(id),
	category   TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (trip_id, category)
);

CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status);
CREATE INDEX IF NOT EXISTS idx_trips_created_at ON trips(created_at);
CREATE INDEX IF NOT EXISTS idx_trip_results_trip_id ON trip_results(trip_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTrip(ctx context.Context, req model.TripRequest) (*model.Trip, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal request")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trips (id, request, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(reqJSON), string(model.TripStatusCreated), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert trip")
	}

	return &model.Trip{
		ID:        id,
		Request:   req,
		Status:    model.TripStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateTripStatus(ctx context.Context, tripID string, status model.TripStatus, errMsg string) error {
	var errVal sql.NullString
	if status == model.TripStatusFailed && errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE trips SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errVal, time.Now().UTC(), tripID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update trip status %s", tripID)
	}
	return checkRowsAffected(res, tripID)
}

func (s *SQLiteStore) SetAgentResult(ctx context.Context, tripID string, result model.AgentResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal agent result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trip_results (trip_id, category, result) VALUES (?, ?, ?)
		 ON CONFLICT (trip_id, category) DO UPDATE SET result = excluded.result`,
		tripID, string(result.Category), string(resultJSON),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set %s result for trip %s", result.Category, tripID)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE trips SET updated_at = ? WHERE id = ?`, time.Now().UTC(), tripID)
	return eris.Wrapf(err, "sqlite: touch trip %s", tripID)
}

func (s *SQLiteStore) SetVerification(ctx context.Context, tripID string, v model.VerificationResult) error {
	vJSON, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal verification")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE trips SET verification = ?, updated_at = ? WHERE id = ?`,
		string(vJSON), time.Now().UTC(), tripID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set verification for trip %s", tripID)
	}
	return checkRowsAffected(res, tripID)
}

func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*model.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, request, status, error, verification, created_at, updated_at FROM trips WHERE id = ?`,
		tripID,
	)
	trip, err := scanTrip(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, result FROM trip_results WHERE trip_id = ?`, tripID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load results for trip %s", tripID)
	}
	defer rows.Close()

	for rows.Next() {
		var category, resultJSON string
		if err := rows.Scan(&category, &resultJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan trip result")
		}
		var res model.AgentResult
		if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal %s result", category)
		}
		if trip.Results == nil {
			trip.Results = make(map[model.Category]model.AgentResult)
		}
		trip.Results[model.Category(category)] = res
	}
	return trip, eris.Wrap(rows.Err(), "sqlite: iterate trip results")
}

func (s *SQLiteStore) ListTrips(ctx context.Context, filter TripFilter) ([]model.Trip, error) {
	query := `SELECT id, request, status, error, verification, created_at, updated_at FROM trips WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Destination != "" {
		query += ` AND json_extract(request, '$.destination') = ?`
		args = append(args, filter.Destination)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list trips")
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, eris.Wrap(rows.Err(), "sqlite: list trips iterate")
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTrip(row scannable) (*model.Trip, error) {
	var t model.Trip
	var reqJSON string
	var errMsg, verificationJSON sql.NullString

	err := row.Scan(&t.ID, &reqJSON, &t.Status, &errMsg, &verificationJSON, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan trip")
	}

	if err := json.Unmarshal([]byte(reqJSON), &t.Request); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal request")
	}
	if errMsg.Valid {
		t.Error = errMsg.String
	}
	if verificationJSON.Valid {
		t.Verification = &model.VerificationResult{}
		if err := json.Unmarshal([]byte(verificationJSON.String), t.Verification); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal verification")
		}
	}
	return &t, nil
}
