package palette

import (
	"bytes"
	"context"
	"testing"

	"github.com/codr1/poemgrid/internal/surface"
	"github.com/codr1/poemgrid/internal/wordgrid"
)

func TestAnalyzeCountsRenderedColors(t *testing.T) {
	var buf bytes.Buffer
	canvas := surface.NewSVG(&buf, 200)
	engine := wordgrid.New(wordgrid.Thumbnail)
	if _, err := engine.Draw(context.Background(), canvas, wordgrid.Tokenize("red blue red"), 1); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if err := canvas.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	counts := make(map[string]int)
	for _, u := range Analyze(buf.Bytes()) {
		counts[u.Attribute+" "+u.Color] = u.Count
	}
	// Diagonal pass plus a cell fill and a circle fill per match: red matches four
	// cells, blue one.
	if counts["fill #ff0000"] != 10 {
		t.Fatalf("red fills = %d, want 10 (usage %v)", counts["fill #ff0000"], counts)
	}
	if counts["fill #0000ff"] != 3 {
		t.Fatalf("blue fills = %d, want 3 (usage %v)", counts["fill #0000ff"], counts)
	}
	if counts["stroke #000000"] != 5 {
		t.Fatalf("black strokes = %d, want 5 (usage %v)", counts["stroke #000000"], counts)
	}
}

func TestAnalyzeOrdersByCount(t *testing.T) {
	doc := []byte(`<rect fill="#fff"/><rect fill="#000"/><rect fill="#000"/><circle stroke='red'/>`)
	usage := Analyze(doc)
	if len(usage) != 3 {
		t.Fatalf("usage = %+v", usage)
	}
	if usage[0].Color != "#000" || usage[0].Count != 2 {
		t.Fatalf("first usage = %+v, want #000 x2", usage[0])
	}
}

func TestNearest(t *testing.T) {
	matches, err := Nearest("#fe0000", 3)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(matches) != 3 || matches[0].Name != "red" {
		t.Fatalf("Nearest() = %+v, want red first", matches)
	}
	if _, err := Nearest("notacolor", 3); err == nil {
		t.Fatal("expected error for unknown color")
	}
}
