package catalog

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "just text", want: "just text"},
		{name: "line_breaks", in: "<p>one<br/>two</p>", want: "one\ntwo"},
		{name: "entities", in: "<span>Bill&#39;s &amp; co</span>", want: "Bill's & co"},
		{name: "script_dropped", in: "<script>var red = 1;</script><em>blue</em>", want: "blue"},
		{name: "empty", in: "", want: ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StripMarkup(test.in); got != test.want {
				t.Fatalf("StripMarkup(%q) = %q, want %q", test.in, got, test.want)
			}
		})
	}
}
