// Package report renders a database snapshot as a self-contained HTML
// document.
//
// The renderer is a pure function of its inputs: with a pinned clock and ID
// source the same snapshot always produces byte-identical output, which is
// what the golden tests compare. Irregular data degrades to formatted text;
// rendering never fails.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carvelab/satchel/internal/codec"
)

// Display limits. Large tables are truncated, not paginated: the report is
// an overview, not a browser.
const (
	DefaultMaxTableRows = 10
	DefaultMaxCellRunes = 100
)

// timeLayout is the generation timestamp format shown in the header.
const timeLayout = "2006-01-02 15:04:05"

// Renderer builds the HTML report for a snapshot.
//
// Now and NewID are injectable so tests can pin the generation timestamp
// and report ID. Production code uses NewRenderer, which wires the wall
// clock and random UUIDs.
type Renderer struct {
	Now   func() time.Time
	NewID func() string

	// MaxTableRows caps how many rows of a table-shaped entry are shown.
	MaxTableRows int
	// MaxCellRunes caps cell width before truncation with an ellipsis.
	MaxCellRunes int
}

// NewRenderer creates a Renderer with production defaults.
func NewRenderer() *Renderer {
	return &Renderer{
		Now:          time.Now,
		NewID:        uuid.NewString,
		MaxTableRows: DefaultMaxTableRows,
		MaxCellRunes: DefaultMaxCellRunes,
	}
}

// Render produces the report document for a snapshot. source names the
// database file the snapshot came from and appears in the header.
//
// Entries are classified by shape: non-empty lists of mappings render as
// tables (sorted union of observed keys, blank cells for missing ones),
// lists of bare primitives as ordered lists, bare primitives as labeled
// fields, and everything nested as a collapsible JSON block. Sections are
// ordered by name. An empty snapshot renders a placeholder, never an error.
func (r *Renderer) Render(source string, snapshot map[string]any) string {
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries, tables []string
	for _, name := range names {
		if _, ok := tableRows(snapshot[name]); ok {
			tables = append(tables, name)
		} else {
			entries = append(entries, name)
		}
	}

	p := message.NewPrinter(language.English)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "    <title>Satchel Report - %s</title>\n", html.EscapeString(source))
	b.WriteString("    <style>\n")
	b.WriteString(documentCSS)
	b.WriteString("    </style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("    <div class=\"container\">\n")
	b.WriteString("        <h1>Satchel Report</h1>\n")
	fmt.Fprintf(&b, "        <p><strong>Database:</strong> %s</p>\n", html.EscapeString(source))
	fmt.Fprintf(&b, "        <p><strong>Generated:</strong> %s</p>\n", r.Now().Format(timeLayout))
	fmt.Fprintf(&b, "        <p><strong>Report ID:</strong> %s</p>\n", html.EscapeString(r.NewID()))

	b.WriteString("        <div class=\"section\">\n")
	b.WriteString("            <h2>Overview</h2>\n")
	writeKeyValue(&b, "Tables", p.Sprintf("%d", len(tables)))
	writeKeyValue(&b, "Entries", p.Sprintf("%d", len(entries)))
	b.WriteString("        </div>\n")

	if len(snapshot) == 0 {
		b.WriteString("        <div class=\"section\">\n")
		b.WriteString("            <p><em>Database is empty.</em></p>\n")
		b.WriteString("        </div>\n")
	}

	if len(entries) > 0 {
		b.WriteString("        <div class=\"section\">\n")
		b.WriteString("            <h2>Entries</h2>\n")
		for _, name := range entries {
			r.writeEntry(&b, name, snapshot[name])
		}
		b.WriteString("        </div>\n")
	}

	if len(tables) > 0 {
		b.WriteString("        <div class=\"section\">\n")
		b.WriteString("            <h2>Tables</h2>\n")
		for _, name := range tables {
			rows, _ := tableRows(snapshot[name])
			r.writeTable(&b, p, name, rows)
		}
		b.WriteString("        </div>\n")
	}

	b.WriteString(documentScript)
	b.WriteString("    </div>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

// writeEntry renders one non-table entry in whichever shape fits.
func (r *Renderer) writeEntry(b *strings.Builder, name string, v any) {
	if items, ok := primitiveItems(v); ok {
		writeOrderedList(b, name, items)
		return
	}
	if isPrimitive(v) {
		writeKeyValue(b, html.EscapeString(name), html.EscapeString(formatPrimitive(v)))
		return
	}
	writeJSONBlock(b, name, v)
}

// writeKeyValue writes one labeled field row. Both strings must already be
// escaped or known-safe.
func writeKeyValue(b *strings.Builder, key, value string) {
	b.WriteString("            <div class=\"key-value\">\n")
	fmt.Fprintf(b, "                <div class=\"key\">%s:</div>\n", key)
	fmt.Fprintf(b, "                <div class=\"value\">%s</div>\n", value)
	b.WriteString("            </div>\n")
}

func writeOrderedList(b *strings.Builder, name string, items []any) {
	b.WriteString("            <div class=\"key-value\">\n")
	fmt.Fprintf(b, "                <div class=\"key\">%s:</div>\n", html.EscapeString(name))
	b.WriteString("                <div class=\"value\">\n")
	b.WriteString("                    <ol class=\"list\">\n")
	for _, item := range items {
		fmt.Fprintf(b, "                        <li>%s</li>\n", html.EscapeString(formatPrimitive(item)))
	}
	b.WriteString("                    </ol>\n")
	b.WriteString("                </div>\n")
	b.WriteString("            </div>\n")
}

func writeJSONBlock(b *strings.Builder, name string, v any) {
	fmt.Fprintf(b, "            <button class=\"collapsible\">%s</button>\n", html.EscapeString(name))
	b.WriteString("            <div class=\"content\">\n")
	fmt.Fprintf(b, "                <div class=\"json\">%s</div>\n", html.EscapeString(indentedJSON(v)))
	b.WriteString("            </div>\n")
}

func (r *Renderer) writeTable(b *strings.Builder, p *message.Printer, name string, rows []map[string]any) {
	columns := unionColumns(rows)

	fmt.Fprintf(b, "            <button class=\"collapsible\">%s (%s rows)</button>\n",
		html.EscapeString(name), p.Sprintf("%d", len(rows)))
	b.WriteString("            <div class=\"content\">\n")
	b.WriteString("                <table class=\"table\">\n")
	b.WriteString("                    <thead>\n")
	b.WriteString("                        <tr>\n")
	for _, col := range columns {
		fmt.Fprintf(b, "                            <th>%s</th>\n", html.EscapeString(col))
	}
	b.WriteString("                        </tr>\n")
	b.WriteString("                    </thead>\n")
	b.WriteString("                    <tbody>\n")

	shown := rows
	if len(shown) > r.MaxTableRows {
		shown = shown[:r.MaxTableRows]
	}
	for _, row := range shown {
		b.WriteString("                        <tr>\n")
		for _, col := range columns {
			fmt.Fprintf(b, "                            <td>%s</td>\n", r.cell(row, col))
		}
		b.WriteString("                        </tr>\n")
	}

	b.WriteString("                    </tbody>\n")
	b.WriteString("                </table>\n")
	if len(rows) > r.MaxTableRows {
		fmt.Fprintf(b, "                <p><em>Showing first %s of %s rows</em></p>\n",
			p.Sprintf("%d", r.MaxTableRows), p.Sprintf("%d", len(rows)))
	}
	b.WriteString("            </div>\n")
}

// cell formats one table cell: a missing column renders blank (an explicit
// null renders "null"), and wide values are cut at MaxCellRunes with a
// trailing ellipsis before escaping.
func (r *Renderer) cell(row map[string]any, col string) string {
	v, ok := row[col]
	if !ok {
		return ""
	}
	text := cellText(v)
	if runes := []rune(text); len(runes) > r.MaxCellRunes {
		text = string(runes[:r.MaxCellRunes]) + "..."
	}
	return html.EscapeString(text)
}

// tableRows reports whether v is table-shaped: a non-empty list whose
// elements are all mappings. Foreign tables arrive as []map[string]any,
// managed lists as []any.
func tableRows(v any) ([]map[string]any, bool) {
	switch list := v.(type) {
	case []map[string]any:
		if len(list) == 0 {
			return nil, false
		}
		return list, true
	case []any:
		if len(list) == 0 {
			return nil, false
		}
		rows := make([]map[string]any, len(list))
		for i, el := range list {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, false
			}
			rows[i] = m
		}
		return rows, true
	}
	return nil, false
}

// primitiveItems reports whether v renders as ordered-list markup: a list of
// bare primitives. The empty list qualifies, whatever its static type.
func primitiveItems(v any) ([]any, bool) {
	switch list := v.(type) {
	case []map[string]any:
		if len(list) == 0 {
			return []any{}, true
		}
	case []any:
		for _, el := range list {
			if !isPrimitive(el) {
				return nil, false
			}
		}
		return list, true
	}
	return nil, false
}

// isPrimitive covers the codec's canonical leaf forms plus the loose types
// foreign columns can carry.
func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, bool, int64, float64, string, []byte:
		return true
	}
	return false
}

// unionColumns returns the sorted union of keys across rows. Heterogeneous
// rows widen the table instead of breaking it.
func unionColumns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

// formatPrimitive renders a leaf value as display text. Strings stay raw
// (no JSON quoting); integral floats keep a ".0" marker so they still read
// as floats; oddities a foreign writer may have stored (blobs, non-finite
// REALs) degrade to best-effort text.
func formatPrimitive(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatFloat(t)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	out := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}

// cellText renders one cell value. Nested containers (table rows can hold
// anything) compact to their wire form.
func cellText(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		if text, err := codec.Encode(v); err == nil {
			return text
		}
		return fmt.Sprint(v)
	}
	return formatPrimitive(v)
}

// indentedJSON renders v as two-space indented JSON. The codec gives
// deterministic key order and leaves HTML characters unescaped; callers
// escape the whole block for embedding. Values the codec rejects degrade to
// fmt text.
func indentedJSON(v any) string {
	text, err := codec.Encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return text
	}
	return buf.String()
}

const documentCSS = `        body {
            font-family: Arial, sans-serif;
            margin: 20px;
            background-color: #f5f5f5;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background-color: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        h1 {
            color: #333;
            border-bottom: 2px solid #007acc;
            padding-bottom: 10px;
        }
        h2 {
            color: #007acc;
            margin-top: 30px;
        }
        .section {
            margin-bottom: 30px;
            padding: 15px;
            border: 1px solid #ddd;
            border-radius: 5px;
            background-color: #fafafa;
        }
        .table {
            width: 100%;
            border-collapse: collapse;
            margin-top: 10px;
        }
        .table th, .table td {
            border: 1px solid #ddd;
            padding: 8px;
            text-align: left;
        }
        .table th {
            background-color: #f2f2f2;
            font-weight: bold;
        }
        .table tr:nth-child(even) {
            background-color: #f9f9f9;
        }
        .json {
            font-family: 'Courier New', monospace;
            background-color: #f8f8f8;
            padding: 10px;
            border-radius: 4px;
            overflow-x: auto;
            white-space: pre-wrap;
        }
        .key-value {
            display: flex;
            margin-bottom: 10px;
        }
        .key {
            font-weight: bold;
            min-width: 150px;
        }
        .value {
            flex: 1;
        }
        .list {
            margin: 5px 0;
            padding-left: 20px;
        }
        .collapsible {
            background-color: #f1f1f1;
            color: #444;
            cursor: pointer;
            padding: 10px;
            width: 100%;
            border: none;
            text-align: left;
            outline: none;
            font-size: 15px;
            margin-top: 5px;
        }
        .active, .collapsible:hover {
            background-color: #ccc;
        }
        .content {
            padding: 0 18px;
            display: none;
            overflow: hidden;
            background-color: #f9f9f9;
        }
`

const documentScript = `        <script>
            var coll = document.getElementsByClassName("collapsible");
            var i;

            for (i = 0; i < coll.length; i++) {
                coll[i].addEventListener("click", function() {
                    this.classList.toggle("active");
                    var content = this.nextElementSibling;
                    if (content.style.display === "block") {
                        content.style.display = "none";
                    } else {
                        content.style.display = "block";
                    }
                });
            }
        </script>
`
