package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/inlinedst/inline"
	"github.com/wippyai/inlinedst/storage"
)

func main() {
	var (
		kind        = flag.String("kind", "", "Container kind: "+strings.Join(kinds, ", "))
		store       = flag.String("storage", "", "Storage: "+strings.Join(storages, ", "))
		words       = flag.Int("words", 0, "Storage words (array size, linear initial size)")
		wordSize    = flag.Int("word-size", 0, "Word size in bytes: 1, 2, 4 or 8")
		limit       = flag.Int("max", 0, "Growth limit in words for vec and linear storage (0 = none)")
		elem        = flag.String("elem", "", "Element kind: "+strings.Join(kindNames(), ", "))
		configFile  = flag.String("config", "", "TOML profile file")
		profile     = flag.String("profile", "", "Profile name in the -config file")
		reportFile  = flag.String("report", "", "Write a CBOR report to this file")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inspect [flags] op...")
		fmt.Fprintln(os.Stderr, "       ops: append:<s> push:<v> extend:<v,v,...> pop truncate:<n> replace:<[kind=]v>")
		fmt.Fprintln(os.Stderr, "       inspect -kind slice -storage array -words 11 -word-size 1 push:97 push:98 push:99 push:100")
		fmt.Fprintln(os.Stderr, "       inspect -config profiles.toml -profile tiny -i  (interactive mode)")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = LoadProfile(*configFile, *profile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kind":
			cfg.Kind = *kind
		case "storage":
			cfg.Storage = *store
		case "words":
			cfg.Words = *words
		case "word-size":
			cfg.WordSize = *wordSize
		case "max":
			cfg.Max = *limit
		case "elem":
			cfg.Elem = *elem
		}
	})
	cfg.Ops = append(cfg.Ops, flag.Args()...)

	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			inline.SetLogger(l)
			storage.SetLogger(l)
			defer l.Sync()
		}
	}

	ctx := context.Background()
	color := term.IsTerminal(int(os.Stdout.Fd()))

	if *interactive {
		if !color {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, os.Stdout, color, *reportFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, w io.Writer, color bool, reportFile string) error {
	s, err := NewSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(w, "Container: %s\n", cfg.Kind)
	fmt.Fprintf(w, "Storage: %s, %d-byte words", cfg.Storage, cfg.WordSize)
	if l, ok := s.st.(interface{ Offset() uint32 }); ok {
		fmt.Fprintf(w, ", offset %#x", l.Offset())
	}
	fmt.Fprintln(w)
	if cfg.Kind != "text" {
		fmt.Fprintf(w, "Element: %s (size %d, align %d, Go %s)\n", s.elem.name, s.elem.size, s.elem.align, s.elem.goType)
	}

	if len(cfg.Ops) > 0 {
		fmt.Fprintf(w, "\nOperations:\n")
		for _, op := range cfg.Ops {
			s.Run(op)
		}
		renderSteps(w, s.Steps)
	}

	fmt.Fprintf(w, "\nValue: %s\n", s.Value())
	fmt.Fprintf(w, "\nWords:\n")
	renderWords(w, s.Layout(), color)

	if reportFile == "" {
		return nil
	}
	data, err := MarshalReport(NewReport(s))
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(reportFile, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(w, "\nReport written to %s\n", reportFile)
	return nil
}
