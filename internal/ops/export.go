package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/timetable"
)

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatICS      ExportFormat = "ics"
	FormatXLSX     ExportFormat = "xlsx"
	FormatMarkdown ExportFormat = "md"
	FormatHTML     ExportFormat = "html"
)

// ExportFormats lists the supported formats in display order.
var ExportFormats = []ExportFormat{FormatJSON, FormatICS, FormatXLSX, FormatMarkdown, FormatHTML}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string       // optional, default: ~/.unitime/exports/<course|schedule>-<timestamp>.<format>
	Format ExportFormat // optional, inferred from Path's extension, else json
	Course string       // optional exact course filter
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string       `json:"path"`
	Format     ExportFormat `json:"format"`
	Count      int          `json:"count"`
	ExportedAt int64        `json:"exported_at"`
}

// Export writes the collection to a file in the requested format.
func Export(ctx context.Context, st *store.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	format, err := resolveFormat(input.Format, input.Path)
	if err != nil {
		return nil, err
	}

	records := st.Records()
	if input.Course != "" {
		records = filterCourse(records, input.Course)
		if len(records) == 0 {
			return nil, errors.NewNotFound("course", input.Course)
		}
	}
	if len(records) == 0 {
		return nil, errors.NewNoRecords("export")
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(input.Course, format, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too; they embed the course name.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, "."+string(format)); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	err = writeAtomic(exportPath, func(w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return encode(w, format, records, paletteOf(cfg), now)
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Format:     format,
		Count:      len(records),
		ExportedAt: now.Unix(),
	}, nil
}

// encode dispatches to the format encoder.
func encode(w io.Writer, format ExportFormat, records []timetable.Record, palette timetable.Palette, now time.Time) error {
	switch format {
	case FormatJSON:
		return encodeJSON(w, records)
	case FormatICS:
		return encodeICS(w, records, now)
	case FormatXLSX:
		return encodeXLSX(w, records, palette)
	case FormatMarkdown, FormatHTML:
		body, err := renderReport(format, "", records, palette)
		if err != nil {
			return err
		}
		_, err = w.Write(body)
		return err
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("unsupported format %q", format))
	}
}

// resolveFormat validates an explicit format or infers one from the path.
func resolveFormat(format ExportFormat, path string) (ExportFormat, error) {
	if format == "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if ext == "" {
			return FormatJSON, nil
		}
		format = ExportFormat(ext)
	}
	format = ExportFormat(strings.ToLower(string(format)))
	for _, f := range ExportFormats {
		if f == format {
			return f, nil
		}
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("format must be one of %v", ExportFormats))
}

func filterCourse(records []timetable.Record, course string) []timetable.Record {
	out := []timetable.Record{}
	for _, r := range records {
		if r.CourseName == course {
			out = append(out, r)
		}
	}
	return out
}

// writeAtomic writes through a temp file and renames it into place, so an
// existing file survives a failed export.
func writeAtomic(path string, write func(io.Writer) error) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if errors.As(err).Code == errors.ErrInvalidRequest {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := write(file); err != nil {
		if errors.As(err).Code != errors.ErrInternal {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to write export: %w", err))
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path must not be a symlink")
	}

	// On Windows os.Rename fails if the destination exists; the existing file
	// is kept rather than deleted first.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath builds ~/.unitime/exports/<name>-<timestamp>.<format>.
func defaultExportPath(course string, format ExportFormat, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	name := "schedule"
	if course != "" {
		name = SanitizeForFilename(strings.ToLower(course))
	}
	filename := fmt.Sprintf("%s-%s.%s", name, now.Format("2006-01-02T150405"), format)
	return filepath.Join(dir, filename), nil
}
