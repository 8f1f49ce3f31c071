/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package presets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"pookalam/internal/domain"
	applog "pookalam/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store persists presets by name.
type Store interface {
	Save(ctx context.Context, p Preset) (Preset, error)
	Get(ctx context.Context, name string) (Preset, error)
	List(ctx context.Context) ([]Preset, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

type dialect struct {
	name   string
	schema string
	bind   func(n int) string
}

var (
	sqliteDialect = dialect{
		name:   DriverSQLite,
		schema: "schema/sqlite.sql",
		bind:   func(int) string { return "?" },
	}
	postgresDialect = dialect{
		name:   DriverPostgres,
		schema: "schema/postgres.sql",
		bind:   func(n int) string { return "$" + strconv.Itoa(n) },
	}
)

// SQLStore is a Store over database/sql. It speaks the SQLite and PostgreSQL
// dialects; the schema is created on open.
type SQLStore struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
	log *slog.Logger

	upsertQ string
	getQ    string
	listQ   string
	deleteQ string
}

// Open dispatches on driver. For sqlite target is a file path (":memory:" is
// accepted); for postgres it is a DSN and password, when set, overrides the
// one in the DSN.
func Open(ctx context.Context, driver, target, password string) (*SQLStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, target)
	case DriverPostgres, "pgx":
		return OpenPostgres(ctx, target, password)
	default:
		return nil, fmt.Errorf("unknown preset driver %q", driver)
	}
}

// OpenSQLite opens (creating if needed) the preset database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset database path is required")
	}
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create preset dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	return newSQLStore(ctx, db, sqliteDialect)
}

// OpenPostgres connects to a shared preset database.
func OpenPostgres(ctx context.Context, dsn, password string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if password != "" {
		cc.Password = password
	}
	db := stdlib.OpenDB(*cc)
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{
		db:  db,
		d:   d,
		now: func() time.Time { return time.Now().UTC() },
		log: applog.WithComponent("presets").With(slog.String("driver", d.name)),
	}
	ddl, err := schemaFS.ReadFile(d.schema)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply preset schema: %w", err)
		}
	}
	b := d.bind
	s.upsertQ = fmt.Sprintf(`INSERT INTO presets (name, mode, curve, params, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s)
		ON CONFLICT (name) DO UPDATE SET
			mode = excluded.mode,
			curve = excluded.curve,
			params = excluded.params,
			updated_at = excluded.updated_at`, b(1), b(2), b(3), b(4), b(5), b(6))
	cols := "name, mode, curve, params, created_at, updated_at"
	s.getQ = fmt.Sprintf(`SELECT %s FROM presets WHERE name = %s`, cols, b(1))
	s.listQ = fmt.Sprintf(`SELECT %s FROM presets ORDER BY name`, cols)
	s.deleteQ = fmt.Sprintf(`DELETE FROM presets WHERE name = %s`, b(1))
	s.log.Debug("preset store ready")
	return s, nil
}

// Driver reports the dialect in use.
func (s *SQLStore) Driver() string { return s.d.name }

// Save inserts or replaces the preset named p.Name. CreatedAt of an existing
// row is preserved.
func (s *SQLStore) Save(ctx context.Context, p Preset) (Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	raw, err := json.Marshal(p.Params)
	if err != nil {
		return Preset{}, fmt.Errorf("marshal params: %w", err)
	}
	now := s.now()
	created := p.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err = s.db.ExecContext(ctx, s.upsertQ,
		p.Name, p.Mode.String(), p.Curve, string(raw),
		s.timeArg(created), s.timeArg(now))
	if err != nil {
		s.log.Error("save preset failed", slog.String("name", p.Name), slog.Any("err", err))
		return Preset{}, fmt.Errorf("save preset %q: %w", p.Name, err)
	}
	s.log.Info("preset saved", slog.String("name", p.Name))
	return s.Get(ctx, p.Name)
}

// Get returns the preset called name or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, name string) (Preset, error) {
	row := s.db.QueryRowContext(ctx, s.getQ, strings.TrimSpace(name))
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("get preset %q: %w", name, err)
	}
	return p, nil
}

// List returns all presets ordered by name.
func (s *SQLStore) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx, s.listQ)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the preset called name; deleting a missing preset is ErrNotFound.
func (s *SQLStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.deleteQ, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.log.Info("preset deleted", slog.String("name", name))
	return nil
}

// Import saves every preset in order, stopping at the first failure.
func Import(ctx context.Context, st Store, ps []Preset) (int, error) {
	for i, p := range ps {
		if _, err := st.Save(ctx, p); err != nil {
			return i, err
		}
	}
	return len(ps), nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) timeArg(t time.Time) any {
	if s.d.name == DriverSQLite {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(sc scanner) (Preset, error) {
	var (
		p                Preset
		mode             string
		params           []byte
		created, updated any
	)
	if err := sc.Scan(&p.Name, &mode, &p.Curve, &params, &created, &updated); err != nil {
		return Preset{}, err
	}
	m, err := domain.ParseMode(mode)
	if err != nil {
		return Preset{}, err
	}
	p.Mode = m
	if err := json.Unmarshal(params, &p.Params); err != nil {
		return Preset{}, fmt.Errorf("decode params: %w", err)
	}
	if p.CreatedAt, err = toTime(created); err != nil {
		return Preset{}, err
	}
	if p.UpdatedAt, err = toTime(updated); err != nil {
		return Preset{}, err
	}
	return p, nil
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
