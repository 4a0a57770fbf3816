package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// writer renders and writes Jennifer files with parallel execution.
type writer struct {
	outDir  string
	workers int
	files   []fileTask

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// fileTask represents a single file generation task.
type fileTask struct {
	name string // output file path (relative to outDir)
	gen  func() *jen.File
}

func newWriter(outDir string, workers int) *writer {
	return &writer{outDir: outDir, workers: workers}
}

func (w *writer) add(name string, gen func() *jen.File) {
	w.files = append(w.files, fileTask{name: name, gen: gen})
}

// run generates all files in parallel.
func (w *writer) run(ctx context.Context) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError("write", w.outDir, "create output directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	if w.workers > 0 {
		eg.SetLimit(w.workers)
	}
	for _, f := range w.files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.generateFile(f)
			}
		})
	}
	return eg.Wait()
}

// generateFile renders, formats and writes a single file.
func (w *writer) generateFile(f fileTask) error {
	var buf bytes.Buffer
	if err := f.gen().Render(&buf); err != nil {
		return NewGenerationError("render", f.name, "", err)
	}
	fullPath := filepath.Join(w.outDir, f.name)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		// Keep the unformatted output for debugging.
		debugPath := fullPath + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return NewGenerationError("format", f.name, "unformatted output written to "+debugPath, err)
	}
	if err := os.WriteFile(fullPath, formatted, 0o644); err != nil {
		return NewGenerationError("write", f.name, "", err)
	}
	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(formatted))
	w.mu.Unlock()
	return nil
}
