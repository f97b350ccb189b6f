package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/db"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/logger"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/timetable"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Paths []string // required; order fixes each file's source index
}

// Document is one timetable document supplied in memory (upload, inline HTML).
type Document struct {
	Name        string
	ContentType string // optional media type, e.g. from a multipart header
	Content     []byte
	Err         error // set when the document could not be read; reported, never parsed
}

// FileResult reports what one file of a batch contributed.
type FileResult struct {
	File        string                `json:"file"`
	SourceIndex int                   `json:"source_index"`
	CourseName  string                `json:"course_name,omitempty"`
	Records     int                   `json:"records"`
	Rejected    []*timetable.RowError `json:"rejected,omitempty"`
	Warnings    []timetable.Warning   `json:"warnings,omitempty"`
	Skipped     string                `json:"skipped,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// ImportOutput contains the result of an import batch.
type ImportOutput struct {
	BatchID  string       `json:"batch_id"`
	Imported int          `json:"imported"`
	Total    int          `json:"total"`
	Files    []FileResult `json:"files"`
}

// errNothingImported aborts the store update when a batch yields no records.
var errNothingImported = stderrors.New("nothing imported")

// Import reads timetable documents from disk and imports them as one batch.
// Files without an HTML extension are skipped but still consume their
// position, so source indices match the order the files were given in. A file
// that is rejected by the path rules, missing or unreadable is reported in its
// FileResult and its siblings are imported regardless.
func Import(ctx context.Context, st *store.Store, database *sql.DB, cfg *config.Config, log *zap.Logger, input ImportInput) (*ImportOutput, error) {
	if len(input.Paths) == 0 {
		return nil, errors.NewInvalidRequest("at least one path is required")
	}
	maxBytes, concurrency := importLimits(cfg)

	docs := make([]Document, len(input.Paths))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range input.Paths {
		docs[i].Name = filepath.Base(path)
		if !HasExtension(path, HTMLExtensions...) {
			continue
		}
		docs[i].ContentType = "text/html"
		g.Go(func() error {
			content, err := loadDocument(ctx, path, cfg, maxBytes)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				docs[i].Err = err
				return nil
			}
			docs[i].Content = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ImportDocuments(ctx, st, database, cfg, log, docs)
}

func loadDocument(ctx context.Context, path string, cfg *config.Config, maxBytes int64) ([]byte, error) {
	if err := ValidatePath(path, PathCheckRead, cfg, HTMLExtensions...); err != nil {
		return nil, err
	}
	return readDocument(ctx, path, maxBytes)
}

// readDocument reads at most maxBytes from path without following symlinks.
func readDocument(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := openFileNoFollowRead(path)
	if err != nil {
		if errors.As(err).Code != errors.ErrInternal {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > maxBytes {
		return nil, errors.NewDocumentTooLarge(path, maxBytes, info.Size())
	}

	content, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read %s: %w", path, err))
	}
	if int64(len(content)) > maxBytes {
		return nil, errors.NewDocumentTooLarge(path, maxBytes, int64(len(content)))
	}
	return content, nil
}

// ImportDocuments parses a batch of in-memory documents, merges every record
// they yield into the collection in one store update and records the batch in
// import history. A file that is oversized, unreadable or fails to parse is
// reported in its FileResult and never aborts its siblings. When the batch
// yields no records the collection is left untouched.
func ImportDocuments(ctx context.Context, st *store.Store, database *sql.DB, cfg *config.Config, log *zap.Logger, docs []Document) (*ImportOutput, error) {
	if len(docs) == 0 {
		return nil, errors.NewInvalidRequest("at least one document is required")
	}
	log = logger.OrNop(log)
	maxBytes, concurrency := importLimits(cfg)

	results := make([]FileResult, len(docs))
	imported := 0
	next, err := st.Update(ctx, func(current []timetable.Record) ([]timetable.Record, error) {
		base := timetable.NextColorIndex(current)
		parsed := make([]*timetable.ParseResult, len(docs))

		var g errgroup.Group
		g.SetLimit(concurrency)
		for i, doc := range docs {
			results[i] = FileResult{File: doc.Name, SourceIndex: base + i}
			switch {
			case doc.Err != nil:
				results[i].Error = doc.Err.Error()
				continue
			case !IsHTMLDocument(doc):
				results[i].Skipped = "not an HTML document"
				continue
			case int64(len(doc.Content)) > maxBytes:
				results[i].Error = errors.NewDocumentTooLarge(doc.Name, maxBytes, int64(len(doc.Content))).Error()
				continue
			}
			g.Go(func() error {
				res, err := timetable.Parse(doc.Content, base+i)
				if err != nil {
					results[i].Error = err.Error()
					return nil
				}
				parsed[i] = res
				return nil
			})
		}
		_ = g.Wait()

		batch := []timetable.Record{}
		for i, res := range parsed {
			if res == nil {
				continue
			}
			results[i].CourseName = res.CourseName
			results[i].Records = len(res.Records)
			results[i].Rejected = res.Rejected
			results[i].Warnings = res.Warnings
			batch = append(batch, res.Records...)
		}

		imported = len(batch)
		if imported == 0 {
			return nil, errNothingImported
		}
		return timetable.Merge(current, batch), nil
	})
	total := 0
	switch {
	case stderrors.Is(err, errNothingImported):
		total = st.Len()
	case err != nil:
		return nil, err
	default:
		total = len(next)
	}

	logResults(log, results)

	batchID := recordHistory(ctx, database, log, results)
	log.Info("import finished",
		zap.String("batch", batchID),
		zap.Int("files", len(docs)),
		zap.Int("imported", imported),
		zap.Int("total", total))

	return &ImportOutput{
		BatchID:  batchID,
		Imported: imported,
		Total:    total,
		Files:    results,
	}, nil
}

// IsHTMLDocument accepts a document declared as text/html or named *.html/*.htm.
func IsHTMLDocument(doc Document) bool {
	if doc.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(doc.ContentType); err == nil && mt == "text/html" {
			return true
		}
	}
	return HasExtension(doc.Name, HTMLExtensions...)
}

func logResults(log *zap.Logger, results []FileResult) {
	for _, r := range results {
		switch {
		case r.Skipped != "":
			log.Info("file skipped", zap.String("file", r.File), zap.String("reason", r.Skipped))
			continue
		case r.Error != "":
			log.Warn("file not parsed", zap.String("file", r.File), zap.String("error", r.Error))
			continue
		}
		for _, w := range r.Warnings {
			log.Warn("parse warning",
				zap.String("file", r.File),
				zap.String("course", r.CourseName),
				zap.String("kind", string(w.Kind)),
				zap.Int("row", w.Row),
				zap.String("message", w.Message))
		}
		for _, rej := range r.Rejected {
			log.Debug("row rejected",
				zap.String("file", r.File),
				zap.String("course", r.CourseName),
				zap.Int("row", rej.Row),
				zap.Error(rej))
		}
	}
}

// recordHistory writes one history row per file under a fresh batch id.
// History is advisory; a failed write is logged and the import still stands.
func recordHistory(ctx context.Context, database *sql.DB, log *zap.Logger, results []FileResult) string {
	now := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)
	ts := ulid.Timestamp(now)
	batchID := ulid.MustNew(ts, entropy).String()
	if database == nil {
		return batchID
	}

	rows := make([]db.ImportRow, 0, len(results))
	for _, r := range results {
		row := db.ImportRow{
			ID:         ulid.MustNew(ts, entropy).String(),
			BatchID:    batchID,
			FileName:   r.File,
			ColorIndex: r.SourceIndex,
			Records:    r.Records,
			Rejected:   len(r.Rejected),
			ImportedAt: now.Unix(),
		}
		if r.CourseName != "" {
			name := r.CourseName
			row.CourseName = &name
		}
		for _, w := range r.Warnings {
			row.Warnings = append(row.Warnings, fmt.Sprintf("%s: %s", w.Kind, w.Message))
		}
		switch {
		case r.Skipped != "":
			msg := "skipped: " + r.Skipped
			row.Error = &msg
		case r.Error != "":
			msg := r.Error
			row.Error = &msg
		}
		rows = append(rows, row)
	}

	if err := db.InsertImports(ctx, database, rows); err != nil {
		log.Error("failed to record import history", zap.String("batch", batchID), zap.Error(err))
	}
	return batchID
}

func importLimits(cfg *config.Config) (maxBytes int64, concurrency int) {
	def := config.DefaultConfig()
	maxBytes, concurrency = def.MaxDocumentBytes, def.ImportConcurrency
	if cfg != nil {
		if cfg.MaxDocumentBytes > 0 {
			maxBytes = cfg.MaxDocumentBytes
		}
		if cfg.ImportConcurrency > 0 {
			concurrency = cfg.ImportConcurrency
		}
	}
	return maxBytes, concurrency
}
