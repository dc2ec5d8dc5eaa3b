package wordgrid

import "testing"

func TestBrightness(t *testing.T) {
	if got := Brightness(255, 255, 255); got != 255 {
		t.Fatalf("Brightness(white) = %v, want 255", got)
	}
	if got := Brightness(0, 0, 0); got != 0 {
		t.Fatalf("Brightness(black) = %v, want 0", got)
	}
	if got := Brightness(255, 0, 0); got != 76.245 {
		t.Fatalf("Brightness(red) = %v, want 76.245", got)
	}
}

func TestBuildLegend(t *testing.T) {
	legend := BuildLegend([]string{"red", "white", "ivory", "transparent", "gold"}, nil)

	tests := []struct {
		label      string
		textColor  string
		background string
	}{
		{label: "red", textColor: "#ff0000"},
		{label: "white", textColor: "#ffffff", background: "#aaa"},
		{label: "ivory", textColor: "#fffff0", background: "#aaa"},
		{label: "transparent", textColor: "#fff", background: "#aaa"},
		{label: "gold", textColor: "#ffd700"},
	}

	if len(legend.Entries) != len(tests) {
		t.Fatalf("entries = %d, want %d", len(legend.Entries), len(tests))
	}
	for i, test := range tests {
		entry := legend.Entries[i]
		if entry.Label != test.label || entry.TextColor != test.textColor || entry.Background != test.background {
			t.Fatalf("entry %d = %+v, want %+v", i, entry, test)
		}
		if (entry.Background != "") != (entry.Padding != "") {
			t.Fatalf("entry %d padding %q does not follow plate %q", i, entry.Padding, entry.Background)
		}
	}

	if got := legend.String(); got != "[red, white, ivory, transparent, gold]" {
		t.Fatalf("String() = %q", got)
	}
}

func TestBuildLegendUnresolvable(t *testing.T) {
	legend := BuildLegend([]string{"cat"}, CSSColors{})
	entry := legend.Entries[0]
	if entry.TextColor != "#fff" || entry.Background != "#aaa" {
		t.Fatalf("fallback entry = %+v", entry)
	}
}

func TestLegendEmpty(t *testing.T) {
	legend := BuildLegend(nil, nil)
	if !legend.Empty() {
		t.Fatal("expected empty legend")
	}
	if got := legend.String(); got != "[]" {
		t.Fatalf("String() = %q, want []", got)
	}
}
