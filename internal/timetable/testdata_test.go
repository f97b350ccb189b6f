package timetable

const sampleHTML = `<!DOCTYPE html>
<html><head><title>Orario</title></head>
<body>
<h1>Orario delle lezioni di Analisi Matematica I (2025/2026)</h1>
<table id="elenco">
<thead><tr><th>Data</th><th>Orario</th><th>Aula</th></tr></thead>
<tbody>
<tr><td colspan="3">Febbraio 2026</td></tr>
<tr><td>lunedì 16 febbraio 2026</td><td>09:00 - 11:00</td><td>Room   A-101</td></tr>
<tr><td>Note</td><td>see below</td></tr>
<tr><td>martedì, 17 febbraio 2026</td><td>14:00-16:30</td></tr>
<tr><td>mercoledì 18 febbraio 2026</td><td>TBD</td><td>Aula 3</td></tr>
<tr><td>giovedì 19 febbrajo 2026</td><td>10:00-12:00</td><td>Aula 3</td></tr>
<tr><td>venerdì 20 febbraio 2026</td><td>12:00-10:00</td><td>Aula 3</td></tr>
</tbody>
</table>
</body></html>`

// staticSource is an in-memory DocumentSource for extractor tests.
type staticSource struct {
	title  string
	tables map[string][][]string
}

func (s staticSource) FindTitle() string { return s.title }

func (s staticSource) FindTable(id string) (TableSource, bool) {
	rows, ok := s.tables[id]
	if !ok {
		return nil, false
	}
	return staticTable(rows), true
}

type staticTable [][]string

func (t staticTable) Rows() int            { return len(t) }
func (t staticTable) Cells(i int) []string { return t[i] }

func mustDate(t interface{ Fatalf(string, ...any) }, s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}
