package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/unitime/internal/errors"
)

// GetValue reads a key from the kv table. found is false when the key is absent.
func GetValue(ctx context.Context, db *sql.DB, key string) (value string, found bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// PutValue writes a key, replacing any previous value in one statement.
func PutValue(ctx context.Context, db *sql.DB, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteValue removes a key. Deleting a missing key is not an error.
func DeleteValue(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ImportRow is one file of an import batch as recorded in history.
type ImportRow struct {
	ID         string   `json:"id"`
	BatchID    string   `json:"batch_id"`
	FileName   string   `json:"file_name"`
	CourseName *string  `json:"course_name,omitempty"`
	ColorIndex int      `json:"color_index"`
	Records    int      `json:"records"`
	Rejected   int      `json:"rejected"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      *string  `json:"error,omitempty"`
	ImportedAt int64    `json:"imported_at"`
}

// InsertImports records the files of one batch atomically.
func InsertImports(ctx context.Context, db *sql.DB, rows []ImportRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO imports (
			id, batch_id, file_name, course_name, color_index,
			records, rejected, warnings_json, error, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var warningsJSON sql.NullString
		if len(r.Warnings) > 0 {
			data, err := json.Marshal(r.Warnings)
			if err != nil {
				return errors.NewInternal(err)
			}
			warningsJSON = sql.NullString{String: string(data), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			r.ID, r.BatchID, r.FileName, toNullString(r.CourseName), r.ColorIndex,
			r.Records, r.Rejected, warningsJSON, toNullString(r.Error), r.ImportedAt,
		); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListImports returns recorded import files, newest first, plus the total count.
func ListImports(ctx context.Context, db *sql.DB, limit, offset int) ([]ImportRow, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM imports`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, batch_id, file_name, course_name, color_index,
			records, rejected, warnings_json, error, imported_at
		FROM imports
		ORDER BY imported_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []ImportRow
	for rows.Next() {
		var (
			r            ImportRow
			courseName   sql.NullString
			warningsJSON sql.NullString
			errText      sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &r.BatchID, &r.FileName, &courseName, &r.ColorIndex,
			&r.Records, &r.Rejected, &warningsJSON, &errText, &r.ImportedAt,
		); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		r.CourseName = fromNullString(courseName)
		r.Error = fromNullString(errText)
		if warningsJSON.Valid && warningsJSON.String != "" {
			if err := json.Unmarshal([]byte(warningsJSON.String), &r.Warnings); err != nil {
				return nil, 0, errors.NewInternal(err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return out, total, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
