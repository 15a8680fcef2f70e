// Command uisnap lays out a markup file and writes a snapshot of the result
// as PDF or PNG.
//
// Usage:
//
//	uisnap [-config ui.toml] [-o out.pdf] [-scale 2] [-width 800 -height 600] page.ui
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ui"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/markup"
	"github.com/gogpu/ui/snapshot"
	"github.com/gogpu/ui/tree"
)

// fallbackFont is registered when the configuration loads no fonts.
const fallbackFont = "go"

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("uisnap", flag.ContinueOnError)
	var (
		config  = fs.String("config", "", "TOML or YAML configuration file")
		output  = fs.String("o", "", "output file, .pdf or .png (default: input name with .pdf)")
		scale   = fs.Float64("scale", 1, "pixels per layout pixel for PNG output")
		width   = fs.Int("width", 0, "viewport width, overrides the configuration")
		height  = fs.Int("height", 0, "viewport height, overrides the configuration")
		verbose = fs.Bool("v", false, "log frame diagnostics to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("uisnap: expected one markup file")
	}
	input := fs.Arg(0)
	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	}

	if *verbose {
		ui.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := ui.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = ui.LoadConfig(*config); err != nil {
			return err
		}
	}
	if *width > 0 {
		cfg.Viewport.Width = *width
	}
	if *height > 0 {
		cfg.Viewport.Height = *height
	}

	doc, err := markup.ParseFile(input)
	if err != nil {
		return err
	}
	dir := filepath.Dir(input)
	root, err := doc.Root.Element(dir)
	if err != nil {
		return err
	}

	opts := []ui.Option{ui.WithConfig(cfg)}
	if len(cfg.Fonts.Files) == 0 {
		face, err := glyph.NewSFNTFace(fallbackFont, goregular.TTF)
		if err != nil {
			return err
		}
		opts = append(opts, ui.WithFontSource(fallbackFont, face))
	}
	c, err := ui.NewContext(root, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Edit(func(t *tree.Tree) error {
		return markup.AppendChildren(t, t.Root(), doc.Root, dir)
	}); err != nil {
		return err
	}

	snap, err := c.Snapshot(context.Background())
	if err != nil {
		return err
	}
	if err := write(out, snap, *scale); err != nil {
		return err
	}
	log.Printf("uisnap: wrote %s (%d draws)", out, snap.Draws())
	return nil
}

// write stores snap at path, as PNG for a .png extension and PDF otherwise.
func write(path string, snap *snapshot.Encoder, scale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = png.Encode(f, snap.Image(scale))
	} else {
		err = snap.WritePDF(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("uisnap: write %s: %w", path, err)
	}
	return nil
}
