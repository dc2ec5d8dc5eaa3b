package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWritesSVGAndLegend(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "poem.txt")
	if err := os.WriteFile(in, []byte("Red, blue; RED!"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out := filepath.Join(dir, "grid.svg")

	legend, err := run(context.Background(), options{in: in, out: out, view: "full", side: 300, dpr: 1})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if legend != "[red, blue]" {
		t.Fatalf("legend = %q, want [red, blue]", legend)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatal("output is not an svg document")
	}
}

func TestRunWritesPNGForEmptyText(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(in, []byte("123 ..."), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out := filepath.Join(dir, "thumb.png")

	legend, err := run(context.Background(), options{in: in, out: out, view: "thumbnail", side: 150, dpr: 1})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if legend != "[]" {
		t.Fatalf("legend = %q, want []", legend)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected png output, stat = %v, %v", info, err)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "poem.txt")
	if err := os.WriteFile(in, []byte("red"), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if _, err := run(context.Background(), options{in: in, out: filepath.Join(dir, "x.gif"), view: "full", side: 100, dpr: 1}); err == nil {
		t.Fatal("expected error for gif output")
	}
}
