package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tripcraft/tripcraft/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// so the Postgres path tests without a server.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"insert_trip":        `INSERT INTO trips (id, request, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_trip_status": `UPDATE trips SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"set_trip_result": `INSERT INTO trip_results (trip_id, category, result) VALUES ($1, $2, $3)
		ON CONFLICT (trip_id, category) DO UPDATE SET result = excluded.result`,
	"set_verification": `UPDATE trips SET verification = $1, updated_at = $2 WHERE id = $3`,
	"get_trip":         `SELECT id, request, status, error, verification, created_at, updated_at FROM trips WHERE id = $1`,
	"get_trip_results": `SELECT category, result FROM trip_results WHERE trip_id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wires an existing pool, for tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS trips (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	request      JSONB NOT NULL,
	status       TEXT NOT NULL DEFAULT 'created',
	error        TEXT,
	verification JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS trip_results (
	trip_id    TEXT NOT NULL REFERENCES trips(id),
	category   TEXT NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (trip_id, category)
);

CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status);
CREATE INDEX IF NOT EXISTS idx_trips_created_at ON trips(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trip_results_trip_id ON trip_results(trip_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateTrip(ctx context.Context, req model.TripRequest) (*model.Trip, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal request")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO trips (id, request, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, reqJSON, string(model.TripStatusCreated), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert trip")
	}

	return &model.Trip{
		ID:        id,
		Request:   req,
		Status:    model.TripStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateTripStatus(ctx context.Context, tripID string, status model.TripStatus, errMsg string) error {
	var errVal *string
	if status == model.TripStatusFailed && errMsg != "" {
		errVal = &errMsg
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE trips SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(status), errVal, time.Now().UTC(), tripID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update trip status %s", tripID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s", tripID)
	}
	return nil
}

func (s *PostgresStore) SetAgentResult(ctx context.Context, tripID string, result model.AgentResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal agent result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO trip_results (trip_id, category, result) VALUES ($1, $2, $3)
		ON CONFLICT (trip_id, category) DO UPDATE SET result = excluded.result`,
		tripID, string(result.Category), resultJSON,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set %s result for trip %s", result.Category, tripID)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE trips SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), tripID)
	return eris.Wrapf(err, "postgres: touch trip %s", tripID)
}

func (s *PostgresStore) SetVerification(ctx context.Context, tripID string, v model.VerificationResult) error {
	vJSON, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal verification")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE trips SET verification = $1, updated_at = $2 WHERE id = $3`,
		vJSON, time.Now().UTC(), tripID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set verification for trip %s", tripID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s", tripID)
	}
	return nil
}

func (s *PostgresStore) GetTrip(ctx context.Context, tripID string) (*model.Trip, error) {
	var t model.Trip
	var reqJSON []byte
	var errMsg *string
	var verificationJSON *[]byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, request, status, error, verification, created_at, updated_at FROM trips WHERE id = $1`,
		tripID,
	).Scan(&t.ID, &reqJSON, &t.Status, &errMsg, &verificationJSON, &t.CreatedAt, &t.UpdatedAt)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get trip %s", tripID)
	}

	if err := json.Unmarshal(reqJSON, &t.Request); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal request")
	}
	if errMsg != nil {
		t.Error = *errMsg
	}
	if verificationJSON != nil {
		t.Verification = &model.VerificationResult{}
		if err := json.Unmarshal(*verificationJSON, t.Verification); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal verification")
		}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT category, result FROM trip_results WHERE trip_id = $1`, tripID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load results for trip %s", tripID)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var resultJSON []byte
		if err := rows.Scan(&category, &resultJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan trip result")
		}
		var res model.AgentResult
		if err := json.Unmarshal(resultJSON, &res); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal %s result", category)
		}
		if t.Results == nil {
			t.Results = make(map[model.Category]model.AgentResult)
		}
		t.Results[model.Category(category)] = res
	}
	return &t, eris.Wrap(rows.Err(), "postgres: iterate trip results")
}

func (s *PostgresStore) ListTrips(ctx context.Context, filter TripFilter) ([]model.Trip, error) {
	query := `SELECT id, request, status, error, verification, created_at, updated_at FROM trips WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Destination != "" {
		query += fmt.Sprintf(` AND request->>'destination' = $%d`, argIdx)
		args = append(args, filter.Destination)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list trips")
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		var t model.Trip
		var reqJSON []byte
		var errMsg *string
		var verificationJSON *[]byte

		if err := rows.Scan(&t.ID, &reqJSON, &t.Status, &errMsg, &verificationJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan trip")
		}
		if err := json.Unmarshal(reqJSON, &t.Request); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal request")
		}
		if errMsg != nil {
			t.Error = *errMsg
		}
		if verificationJSON != nil {
			t.Verification = &model.VerificationResult{}
			if err := json.Unmarshal(*verificationJSON, t.Verification); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal verification")
			}
		}
		trips = append(trips, t)
	}
	return trips, eris.Wrap(rows.Err(), "postgres: list trips iterate")
}
