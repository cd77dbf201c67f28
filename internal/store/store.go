package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// Store persists named datasets in a SQLite file so per-source
// collections can accumulate before combining and summarizing.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	dataset        TEXT    NOT NULL,
	position       INTEGER NOT NULL,
	name           TEXT    NOT NULL,
	sons           INTEGER,
	daughters      INTEGER,
	total_children INTEGER,
	sex_ratio      REAL,
	inferred       INTEGER NOT NULL DEFAULT 0,
	extra          TEXT,
	PRIMARY KEY (dataset, position)
);
`

// Open opens (creating if needed) a store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDataset replaces the named dataset with ds, preserving row order.
func (s *Store) SaveDataset(name string, ds model.Dataset) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM records WHERE dataset = ?`, name); err != nil {
		return fmt.Errorf("clear dataset: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (dataset, position, name, sons, daughters, total_children, sex_ratio, inferred, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range ds {
		var extra any
		if len(rec.Extra) > 0 {
			data, jerr := json.Marshal(rec.Extra)
			if jerr != nil {
				return fmt.Errorf("marshal extra: %w", jerr)
			}
			extra = string(data)
		}
		_, err = stmt.Exec(name, i, rec.Name,
			nullInt(rec.Sons), nullInt(rec.Daughters), nullInt(rec.TotalChildren),
			nullFloat(rec.SexRatio), rec.Inferred, extra)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadDataset reads the named dataset in its original row order. A
// dataset that was never saved comes back empty, not as an error.
func (s *Store) LoadDataset(name string) (model.Dataset, error) {
	rows, err := s.db.Query(`
		SELECT name, sons, daughters, total_children, sex_ratio, inferred, extra
		FROM records WHERE dataset = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ds model.Dataset
	for rows.Next() {
		var (
			rec      model.Record
			sons     sql.NullInt64
			daughter sql.NullInt64
			total    sql.NullInt64
			ratio    sql.NullFloat64
			extra    sql.NullString
		)
		if err := rows.Scan(&rec.Name, &sons, &daughter, &total, &ratio, &rec.Inferred, &extra); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Sons = fromNullInt(sons)
		rec.Daughters = fromNullInt(daughter)
		rec.TotalChildren = fromNullInt(total)
		if ratio.Valid {
			v := ratio.Float64
			rec.SexRatio = &v
		}
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &rec.Extra); err != nil {
				return nil, fmt.Errorf("unmarshal extra: %w", err)
			}
		}
		ds = append(ds, rec)
	}
	return ds, rows.Err()
}

// Datasets lists the stored dataset names.
func (s *Store) Datasets() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT dataset FROM records ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
