package wordgrid

import "testing"

func TestResolveColorValid(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		normalized string
		r, g, b    uint8
	}{
		{name: "named", input: "red", normalized: "#ff0000", r: 255},
		{name: "named_mixed_case", input: "CornflowerBlue", normalized: "#6495ed", r: 0x64, g: 0x95, b: 0xed},
		{name: "named_grey_spelling", input: "slategrey", normalized: "#708090", r: 0x70, g: 0x80, b: 0x90},
		{name: "css4_named", input: "rebeccapurple", normalized: "#663399", r: 0x66, g: 0x33, b: 0x99},
		{name: "system_color", input: "canvas", normalized: "#ffffff", r: 255, g: 255, b: 255},
		{name: "deprecated_system_color", input: "menu", normalized: "#f7f7f7", r: 0xf7, g: 0xf7, b: 0xf7},
		{name: "currentcolor", input: "currentColor", normalized: "#000000"},
		{name: "short_hex", input: "#abc", normalized: "#aabbcc", r: 0xaa, g: 0xbb, b: 0xcc},
		{name: "short_hex_upper", input: "#F0A", normalized: "#ff00aa", r: 0xff, b: 0xaa},
		{name: "long_hex", input: "#1E90FF", normalized: "#1e90ff", r: 0x1e, g: 0x90, b: 0xff},
		{name: "opaque_long_alpha_hex", input: "#336699ff", normalized: "#336699", r: 0x33, g: 0x66, b: 0x99},
		{name: "padded", input: "  teal  ", normalized: "#008080", g: 0x80, b: 0x80},
		{name: "rgb_commas", input: "rgb(255, 128, 0)", normalized: "#ff8000", r: 255, g: 128},
		{name: "rgb_spaces", input: "rgb(10 20 30)", normalized: "#0a141e", r: 10, g: 20, b: 30},
		{name: "rgb_percent", input: "rgb(100%, 0%, 50%)", normalized: "#ff0080", r: 255, b: 128},
		{name: "rgb_clamped", input: "rgb(300, -5, 0)", normalized: "#ff0000", r: 255},
		{name: "rgba_opaque", input: "rgba(0, 0, 255, 1)", normalized: "#0000ff", b: 255},
		{name: "hsl", input: "hsl(0, 100%, 50%)", normalized: "#ff0000", r: 255},
		{name: "hsl_space", input: "hsl(120deg 100% 25%)", normalized: "#008000", g: 128},
		{name: "hsl_turn", input: "hsl(0.5turn 100% 50%)", normalized: "#00ffff", g: 255, b: 255},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ResolveColor(test.input)
			if !got.Valid {
				t.Fatalf("ResolveColor(%q) is invalid, want valid", test.input)
			}
			if got.Normalized != test.normalized {
				t.Fatalf("ResolveColor(%q).Normalized = %q, want %q", test.input, got.Normalized, test.normalized)
			}
			if got.R != test.r || got.G != test.g || got.B != test.b {
				t.Fatalf("ResolveColor(%q) rgb = (%d, %d, %d), want (%d, %d, %d)", test.input, got.R, got.G, got.B, test.r, test.g, test.b)
			}
			if !got.Opaque() {
				t.Fatalf("ResolveColor(%q) alpha = %v, want opaque", test.input, got.Alpha)
			}
		})
	}
}

func TestResolveColorTranslucent(t *testing.T) {
	tests := []struct {
		input      string
		normalized string
	}{
		{input: "transparent", normalized: "rgba(0, 0, 0, 0)"},
		{input: "rgba(255, 0, 0, 0.5)", normalized: "rgba(255, 0, 0, 0.5)"},
		{input: "rgb(255 0 0 / 50%)", normalized: "rgba(255, 0, 0, 0.5)"},
		{input: "#ff000055", normalized: "rgba(255, 0, 0, 0.333)"},
		{input: "#f008", normalized: "rgba(255, 0, 0, 0.533)"},
	}

	for _, test := range tests {
		got := ResolveColor(test.input)
		if !got.Valid {
			t.Fatalf("ResolveColor(%q) is invalid, want valid", test.input)
		}
		if got.Opaque() {
			t.Fatalf("ResolveColor(%q) is opaque, want translucent", test.input)
		}
		if got.Normalized != test.normalized {
			t.Fatalf("ResolveColor(%q).Normalized = %q, want %q", test.input, got.Normalized, test.normalized)
		}
	}
}

func TestResolveColorInvalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"cat",
		"the",
		"redd",
		"#",
		"#ab",
		"#abcde",
		"#ggg",
		"#abcdef0",
		"rgb(1, 2)",
		"rgb(1, 2, 3, 4, 5)",
		"rgb(1, 2 3)",
		"rgb(1 2 3 / )",
		"rgb(a, b, c)",
		"hsl(10%, 50%, 50%)",
		"hsl(10, 20)",
		"cmyk(0, 0, 0, 0)",
		"()",
	}

	for _, input := range inputs {
		if got := ResolveColor(input); got.Valid {
			t.Fatalf("ResolveColor(%q) = %+v, want invalid", input, got)
		}
	}
}

func TestResolveColorIsPure(t *testing.T) {
	for _, input := range []string{"red", "#abc", "hsl(200, 50%, 40%)", "dog", "transparent"} {
		first := ResolveColor(input)
		second := ResolveColor(input)
		if first != second {
			t.Fatalf("ResolveColor(%q) not deterministic: %+v vs %+v", input, first, second)
		}
	}
}

func TestWithAlphaSuffix(t *testing.T) {
	red := ResolveColor("red")
	overlay := red.WithAlphaSuffix(0x55)
	if overlay.R != 0xff || overlay.G != 0 || overlay.B != 0 || overlay.A != 0x55 {
		t.Fatalf("overlay = %+v, want red at alpha 0x55", overlay)
	}

	transparent := ResolveColor("transparent")
	if got := transparent.WithAlphaSuffix(0x55); got.A != 0 {
		t.Fatalf("translucent overlay alpha = %d, want unchanged 0", got.A)
	}
}
