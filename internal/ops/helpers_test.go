package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/db"
	"github.com/hpungsan/unitime/internal/store"
)

type testEnv struct {
	dir string
	db  *sql.DB
	st  *store.Store
	cfg *config.Config
}

// newTestEnv opens a fresh database and allows import/export in its temp dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	database, err := db.Init(dir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	st, err := store.Open(context.Background(), database)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return &testEnv{dir: dir, db: database, st: st, cfg: cfg}
}

// timetableHTML builds an exported timetable page. Each row is
// "date|time|location"; an empty location omits the third cell.
func timetableHTML(title string, rows ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h1>%s</h1>\n<table id=\"elenco\"><tbody>\n", title)
	for _, row := range rows {
		parts := strings.SplitN(row, "|", 3)
		b.WriteString("<tr>")
		for _, p := range parts {
			if p == "" {
				continue
			}
			fmt.Fprintf(&b, "<td>%s</td>", p)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

var (
	fisicaHTML = timetableHTML("Lesson schedule for Fisica (2026)",
		"lunedì 16 febbraio 2026|09:00 - 11:00|Room A",
		"mercoledì 18 febbraio 2026|14:00 - 16:00|",
	)
	chimicaHTML = timetableHTML("Orario delle lezioni di Chimica",
		"martedì 17 febbraio 2026|10:00 - 12:00|Lab 1",
		"giovedì 19 febbraio 2026|TBD|Lab 1",
	)
)

// writeDoc writes content to name inside dir and returns the path.
func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// seed imports the two sample courses in one batch.
func seed(t *testing.T, env *testEnv) *ImportOutput {
	t.Helper()
	out, err := ImportDocuments(context.Background(), env.st, env.db, env.cfg, nil, []Document{
		{Name: "fisica.html", Content: []byte(fisicaHTML)},
		{Name: "chimica.html", Content: []byte(chimicaHTML)},
	})
	if err != nil {
		t.Fatalf("ImportDocuments failed: %v", err)
	}
	return out
}
