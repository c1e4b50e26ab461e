// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// SQL drivers for the supported store types.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/model"
)

const execSetting = "exec"

// targetRow is the bun model for the targets table.
type targetRow struct {
	bun.BaseModel `bun:"table:targets"`

	ID         int    `bun:"id,pk"`
	Name       string `bun:"name,notnull"`
	Host       string `bun:"host,notnull"`
	Port       int    `bun:"port,notnull"`
	Username   string `bun:"username,notnull"`
	ScanOnline bool   `bun:"scan_online,notnull"`
}

// settingRow is the bun model for the settings table.
type settingRow struct {
	bun.BaseModel `bun:"table:settings"`

	Setting string `bun:"setting,pk"`
	Value   string `bun:"value,notnull"`
}

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// SQLStore keeps the registry in a relational database through bun.
type SQLStore struct {
	kind string
	dsn  string
	bun  *bun.DB
}

// OpenSQLStore connects to the database and creates the schema if needed.
func OpenSQLStore(kind, dsn string) (*SQLStore, error) {
	driverName := kind
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	if kind == "postgres" {
		driverName = "pgx"
	}
	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrIO, err)
	}
	// For in-memory SQLite databases force a single connection, otherwise
	// every connection sees its own empty database.
	if kind == "sqlite" && (dsn == ":memory:" || dsn == "file::memory:") {
		sqlDB.SetMaxOpenConns(1)
	}

	s := &SQLStore{kind: kind, dsn: dsn, bun: createBunDB(sqlDB, kind)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logging.Debugf("store: opened %s database in %s", kind, time.Since(start))
	return s, nil
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and store kind.
func createBunDB(sqlDB *sql.DB, kind string) *bun.DB {
	switch kind {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, m := range []any{(*targetRow)(nil), (*settingRow)(nil)} {
		if _, err := s.bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("%w: failed to create schema: %v", ErrIO, err)
		}
	}
	return nil
}

// Location returns the store kind and DSN.
func (s *SQLStore) Location() string { return s.kind + ":" + s.dsn }

// Close releases the database connection.
func (s *SQLStore) Close() error { return s.bun.Close() }

// Load reads every target and the exec template.
func (s *SQLStore) Load(ctx context.Context) (*model.Registry, error) {
	var rows []targetRow
	if err := s.bun.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to read targets: %v", ErrIO, err)
	}

	r := model.NewRegistry()
	var setting settingRow
	err := s.bun.NewSelect().Model(&setting).Where("setting = ?", execSetting).Scan(ctx)
	switch {
	case err == nil:
		r.Exec = setting.Value
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("%w: failed to read settings: %v", ErrIO, err)
	}

	for _, row := range rows {
		r.Targets = append(r.Targets, model.Target{
			ID:         row.ID,
			Name:       row.Name,
			Host:       row.Host,
			Port:       row.Port,
			Username:   row.Username,
			ScanOnline: row.ScanOnline,
		})
	}
	return check(r)
}

// Save replaces all stored targets and the exec template in one transaction.
func (s *SQLStore) Save(ctx context.Context, r *model.Registry) error {
	r = normalize(r)
	rows := make([]targetRow, 0, len(r.Targets))
	for _, t := range r.Targets {
		rows = append(rows, targetRow{
			ID:         t.ID,
			Name:       t.Name,
			Host:       t.Host,
			Port:       t.Port,
			Username:   t.Username,
			ScanOnline: t.ScanOnline,
		})
	}

	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*targetRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		if len(rows) > 0 {
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := tx.NewDelete().Model((*settingRow)(nil)).Where("setting = ?", execSetting).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&settingRow{Setting: execSetting, Value: r.Exec}).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save registry: %v", ErrIO, err)
	}
	return nil
}
