package report

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/carvelab/satchel/internal/testutil"
)

// fixedRenderer pins clock and ID so output is byte-stable.
func fixedRenderer() *Renderer {
	clock := testutil.NewClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 0)
	ids := testutil.NewIDSequence("report")
	return &Renderer{
		Now:          clock.Now,
		NewID:        ids.Next,
		MaxTableRows: DefaultMaxTableRows,
		MaxCellRunes: DefaultMaxCellRunes,
	}
}

// fullSnapshot exercises every entry shape at once: labeled fields, an
// ordered list, JSON blocks, and two tables (one heterogeneous and
// truncated).
func fullSnapshot() map[string]any {
	events := make([]map[string]any, 0, 12)
	for i := 1; i <= 12; i++ {
		row := map[string]any{"id": int64(i), "kind": fmt.Sprintf("event-%d", i)}
		if i%2 == 0 {
			row["extra"] = true
		}
		events = append(events, row)
	}
	events[0]["payload"] = strings.Repeat("x", 120)

	return map[string]any{
		"name":   "Ada Lovelace",
		"age":    int64(36),
		"score":  99.5,
		"active": true,
		"note":   nil,
		"tags":   []any{"alpha", "beta", "gamma"},
		"profile": map[string]any{
			"city":  "Oslo",
			"zip":   nil,
			"langs": []any{"en", "no"},
		},
		"mixed": []any{int64(1), []any{int64(2), int64(3)}},
		"products": []map[string]any{
			{"id": int64(1), "name": "Widget", "price": 9.99},
			{"id": int64(2), "name": "Gadget", "price": nil},
		},
		"events": events,
	}
}

func TestRender_Golden_Full(t *testing.T) {
	out := fixedRenderer().Render("app.db", fullSnapshot())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report_full", []byte(out))
}

func TestRender_Golden_Empty(t *testing.T) {
	out := fixedRenderer().Render("empty.db", map[string]any{})

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report_empty", []byte(out))
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer()

	assert.NotNil(t, r.Now)
	assert.NotNil(t, r.NewID)
	assert.Equal(t, 10, r.MaxTableRows)
	assert.Equal(t, 100, r.MaxCellRunes)
}

func TestRender_EmptySnapshotHasPlaceholder(t *testing.T) {
	out := fixedRenderer().Render("empty.db", map[string]any{})

	assert.Contains(t, out, "Database is empty.")
	assert.NotContains(t, out, "<h2>Entries</h2>")
	assert.NotContains(t, out, "<h2>Tables</h2>")
}

func TestRender_Header(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{})

	assert.Contains(t, out, "<title>Satchel Report - app.db</title>")
	assert.Contains(t, out, "<h1>Satchel Report</h1>")
	assert.Contains(t, out, "<p><strong>Database:</strong> app.db</p>")
	assert.Contains(t, out, "<p><strong>Generated:</strong> 2024-03-01 12:00:00</p>")
	assert.Contains(t, out, "<p><strong>Report ID:</strong> report-1</p>")
}

func TestRender_ScalarShapes(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"name":   "Ada",
		"age":    int64(36),
		"score":  99.5,
		"ratio":  2.0,
		"active": true,
		"note":   nil,
	})

	assert.Contains(t, out, `<div class="key">name:</div>`)
	assert.Contains(t, out, `<div class="value">Ada</div>`)
	assert.Contains(t, out, `<div class="value">36</div>`)
	assert.Contains(t, out, `<div class="value">99.5</div>`)
	// Integral floats keep the float marker
	assert.Contains(t, out, `<div class="value">2.0</div>`)
	assert.Contains(t, out, `<div class="value">true</div>`)
	assert.Contains(t, out, `<div class="value">null</div>`)
}

func TestRender_PrimitiveListIsOrdered(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"tags": []any{"alpha", "beta"},
	})

	assert.Contains(t, out, `<ol class="list">`)
	assert.Contains(t, out, "<li>alpha</li>")
	assert.Contains(t, out, "<li>beta</li>")
}

func TestRender_EmptyListIsOrdered(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"empty":   []any{},
		"foreign": []map[string]any{},
	})

	assert.Equal(t, 2, strings.Count(out, `<ol class="list">`))
	assert.NotContains(t, out, `<div class="json">`)
	assert.NotContains(t, out, `<table class="table">`)
}

func TestRender_MappingIsCollapsibleJSON(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"profile": map[string]any{"city": "Oslo", "zip": int64(150)},
	})

	assert.Contains(t, out, `<button class="collapsible">profile</button>`)
	assert.Contains(t, out, "&#34;city&#34;: &#34;Oslo&#34;")
	assert.Contains(t, out, "&#34;zip&#34;: 150")
}

func TestRender_MixedListIsCollapsibleJSON(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"mixed": []any{int64(1), []any{int64(2)}},
	})

	assert.Contains(t, out, `<button class="collapsible">mixed</button>`)
	assert.Contains(t, out, `<div class="json">`)
	assert.NotContains(t, out, `<ol class="list">`)
}

func TestRender_TableUnionColumns(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"rows": []map[string]any{
			{"a": int64(1)},
			{"b": int64(2)},
		},
	})

	assert.Contains(t, out, "<th>a</th>")
	assert.Contains(t, out, "<th>b</th>")
	// Missing cells are blank, explicit nulls are not
	assert.Contains(t, out, "<td></td>")
}

func TestRender_TableFromListOfMaps(t *testing.T) {
	// A managed list whose elements are all mappings is table-shaped too
	out := fixedRenderer().Render("app.db", map[string]any{
		"users": []any{
			map[string]any{"id": int64(1), "name": "ada"},
			map[string]any{"id": int64(2), "name": "bob"},
		},
	})

	assert.Contains(t, out, `<button class="collapsible">users (2 rows)</button>`)
	assert.Contains(t, out, "<th>id</th>")
	assert.Contains(t, out, "<td>ada</td>")
}

func TestRender_TableRowTruncation(t *testing.T) {
	rows := make([]map[string]any, 25)
	for i := range rows {
		rows[i] = map[string]any{"n": int64(i)}
	}

	out := fixedRenderer().Render("app.db", map[string]any{"big": rows})

	assert.Contains(t, out, "<em>Showing first 10 of 25 rows</em>")
	assert.Contains(t, out, "<td>9</td>")
	assert.NotContains(t, out, "<td>10</td>")
}

func TestRender_CellTruncation(t *testing.T) {
	wide := strings.Repeat("y", 130)
	out := fixedRenderer().Render("app.db", map[string]any{
		"rows": []map[string]any{{"v": wide}},
	})

	assert.Contains(t, out, strings.Repeat("y", 100)+"...")
	assert.NotContains(t, out, strings.Repeat("y", 101))
}

func TestRender_EscapesHTML(t *testing.T) {
	out := fixedRenderer().Render("x<y>.db", map[string]any{
		"<script>": "<b>&</b>",
	})

	assert.Contains(t, out, "x&lt;y&gt;.db")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&lt;b&gt;&amp;&lt;/b&gt;")
	assert.NotContains(t, out, "<script>:")
}

func TestRender_ForeignOdditiesDegrade(t *testing.T) {
	out := fixedRenderer().Render("app.db", map[string]any{
		"rows": []map[string]any{
			{"inf": math.Inf(1), "blob": []byte("raw bytes")},
		},
	})

	assert.Contains(t, out, "<td>+Inf</td>")
	assert.Contains(t, out, "<td>raw bytes</td>")
}

func TestRender_LargeCountsUseSeparators(t *testing.T) {
	snapshot := make(map[string]any, 1200)
	for i := 0; i < 1200; i++ {
		snapshot[fmt.Sprintf("k%04d", i)] = int64(i)
	}

	out := fixedRenderer().Render("app.db", snapshot)

	assert.Contains(t, out, `<div class="value">1,200</div>`)
}

func TestRender_Deterministic(t *testing.T) {
	snapshot := fullSnapshot()

	first := fixedRenderer().Render("app.db", snapshot)
	second := fixedRenderer().Render("app.db", snapshot)

	assert.Equal(t, first, second)
}
