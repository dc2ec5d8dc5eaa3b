// cmd/tools/render/main.go
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/surface"
	"github.com/codr1/poemgrid/internal/wordgrid"
)

type options struct {
	in     string
	out    string
	view   string
	format string
	side   float64
	dpr    float64
	clamp  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "Text file to render (- for stdin)")
	flag.StringVar(&opts.out, "out", "", "Output file; the extension picks the format unless -format is set")
	flag.StringVar(&opts.view, "view", "full", "View to render (full, thumbnail)")
	flag.StringVar(&opts.format, "format", "", "Output format (png, svg)")
	flag.Float64Var(&opts.side, "side", 700, "Canvas side in display pixels")
	flag.Float64Var(&opts.dpr, "dpr", 1, "Device pixel ratio for png output")
	flag.BoolVar(&opts.clamp, "clamp", false, "Keep match circles inside their cell")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if opts.in == "" || opts.out == "" {
		fmt.Fprintln(os.Stderr, "Both -in and -out are required:")
		flag.PrintDefaults()
		os.Exit(2)
	}

	legend, err := run(log.Logger.WithContext(context.Background()), opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Render failed")
	}
	fmt.Println(legend)
}

func run(ctx context.Context, opts options) (string, error) {
	text, err := readInput(opts.in)
	if err != nil {
		return "", err
	}

	cfg := wordgrid.FullView
	switch opts.view {
	case "full":
	case "thumbnail":
		cfg = wordgrid.Thumbnail
	default:
		return "", fmt.Errorf("unknown view %q", opts.view)
	}
	cfg.ClampCircleRadius = opts.clamp
	engine := wordgrid.New(cfg)

	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.out)), ".")
	}

	words := wordgrid.Tokenize(text)
	var buf bytes.Buffer
	var matched []string
	var drawErr error
	switch format {
	case "png":
		raster, err := surface.NewRaster(opts.side, opts.dpr)
		if err != nil {
			return "", err
		}
		defer raster.Close()
		matched, drawErr = engine.Draw(ctx, raster, words, opts.dpr)
		if err := raster.EncodePNG(&buf); err != nil {
			return "", fmt.Errorf("encode png: %w", err)
		}
	case "svg":
		canvas := surface.NewSVG(&buf, opts.side)
		matched, drawErr = engine.Draw(ctx, canvas, words, opts.dpr)
		if err := canvas.Close(); err != nil {
			return "", fmt.Errorf("close svg: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}

	switch {
	case errors.Is(drawErr, wordgrid.ErrEmptyInput):
		log.Ctx(ctx).Warn().Msg("No words found; writing an empty canvas")
	case errors.Is(drawErr, wordgrid.ErrDegenerateGeometry):
		log.Ctx(ctx).Warn().Float64("side", opts.side).Msg("Canvas too small for the grid; writing an empty canvas")
	}

	if err := os.WriteFile(opts.out, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", opts.out, err)
	}
	log.Ctx(ctx).Info().
		Str("out", opts.out).
		Int("word_count", len(words)).
		Int("matched_colors", len(matched)).
		Msg("Rendered word matrix")

	return wordgrid.BuildLegend(matched, engine.Oracle()).String(), nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
