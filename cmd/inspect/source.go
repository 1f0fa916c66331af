package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/source"
)

// openFile reads the whole file into an in-memory source. Commits are not
// written back to disk.
func openFile(path string) (binlayout.Source, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	return source.NewBytes(data), func() {}, nil
}

// openWasm instantiates a core module without running its start functions
// and exposes its linear memory.
func openWasm(ctx context.Context, path string) (binlayout.Source, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	rt := wazero.NewRuntime(ctx)
	closeFn := func() { rt.Close(ctx) }

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("compile failed: %w", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("instantiate failed: %w", err)
	}

	mem := mod.Memory()
	if mem == nil {
		closeFn()
		return nil, nil, fmt.Errorf("module %s has no memory", path)
	}
	return source.NewMemory(mem), closeFn, nil
}
