package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/config"
	"github.com/wippyai/binlayout/layout"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to a binary file")
		wasmFile    = flag.String("wasm", "", "Path to a core wasm module; its linear memory is inspected")
		offsetStr   = flag.String("offset", "0", "Offset of the layout (decimal or 0x hex)")
		layoutName  = flag.String("layout", "header", "Catalog layout to overlay")
		configPath  = flag.String("config", "", "Path to a YAML config file")
		list        = flag.Bool("list", false, "List catalog layouts and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	entries, err := catalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *list {
		printCatalog(entries)
		return
	}

	if (*file == "") == (*wasmFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: inspect -file <path> [-layout name] [-offset n] [-config cfg.yaml]")
		fmt.Fprintln(os.Stderr, "       inspect -wasm <module.wasm> [-layout name] [-offset n]")
		fmt.Fprintln(os.Stderr, "       inspect -list")
		fmt.Fprintln(os.Stderr, "       inspect -file <path> -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*file, *wasmFile, *offsetStr, *layoutName, *configPath, entries, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file, wasmFile, offsetStr, layoutName, configPath string, entries []entry, interactive bool) error {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	layout.SetConfig(cfg)

	logger, err := cfg.Logging.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	layout.SetLogger(logger)

	offset, err := strconv.ParseUint(offsetStr, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q: %w", offsetStr, err)
	}

	e, err := lookup(entries, layoutName)
	if err != nil {
		return err
	}

	var (
		src     binlayout.Source
		closeFn func()
		name    = file
	)
	if wasmFile != "" {
		name = wasmFile
		src, closeFn, err = openWasm(ctx, wasmFile)
	} else {
		src, closeFn, err = openFile(file)
	}
	if err != nil {
		return err
	}
	defer closeFn()

	inst := layout.New(e.typ, src, layout.At(offset), layout.Named(e.name))
	logger.Debug("loading layout",
		zap.String("layout", e.name),
		zap.Stringer("type", e.typ),
		zap.Uint64("offset", offset))

	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(name, inst)
	}

	if err := inst.Load(); err != nil {
		return fmt.Errorf("load %s: %w", e.name, err)
	}

	fmt.Printf("Source: %s\n", name)
	if sz, ok := src.(binlayout.Sizer); ok {
		fmt.Printf("Size: %#x\n", sz.Size())
	}
	fmt.Printf("Layout: %s %s (%d bytes at %#x)\n\n", e.name, e.typ, inst.BlockSize(), offset)
	fmt.Println(inst.Details())
	return nil
}

func printCatalog(entries []entry) {
	fmt.Printf("Layouts:\n")
	for _, e := range entries {
		size := layout.New(e.typ, nil).BlockSize()
		fmt.Printf("  %-12s %3d bytes  %s\n", e.name, size, e.help)
	}
}
