// Package orchestrator drives one analysis run: walking discovered files
// out to a bounded worker pool, dispatching each to the registered
// analyzer for its detected language, and serializing results to a single
// mutex-guarded NDJSON stream bracketed by run/done envelopes.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oxhq/codeframe/internal/cobol"
	"github.com/oxhq/codeframe/internal/config"
	"github.com/oxhq/codeframe/internal/ignorefile"
	"github.com/oxhq/codeframe/internal/langdetect"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/walker"
)

// copybookReceiver is implemented by the registered COBOL analyzer. Declaring
// it locally, rather than asserting against *cobol.Analyzer, keeps the
// dispatch loop ignorant of which analyzer happens to need pre-pass state.
type copybookReceiver interface {
	SetCopybooks(*cobol.Repository)
}

// RunEnvelope is the first record written to the output stream.
type RunEnvelope struct {
	Kind       string `json:"kind"`
	StartedAt  string `json:"started_at"`
	InputPath  string `json:"input_path"`
	TotalFiles int    `json:"total_files"`
}

// DoneEnvelope is the last record written to the output stream.
type DoneEnvelope struct {
	Kind            string  `json:"kind"`
	EndedAt         string  `json:"ended_at"`
	FilesAnalyzed   int     `json:"files_analyzed"`
	FilesWithErrors int     `json:"files_with_errors"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ErrorRecord is written when a single file fails analysis; siblings are
// unaffected.
type ErrorRecord struct {
	Kind     string `json:"kind"`
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Error    string `json:"error"`
}

// Options configures a Run.
type Options struct {
	InputPath    string
	Config       *config.Config
	Registry     *registry.Registry
	Ignore       *ignorefile.Matcher
	IncludeGlobs []string
	ExcludeGlobs []string
	Workers      int
}

// writer serializes concurrent record emission behind one mutex, flushing
// after every line so a crash mid-run leaves a valid prefix.
type writer struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *writer) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("orchestrator: marshal record: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(data); err != nil {
		return err
	}
	if _, err := w.out.Write([]byte("\n")); err != nil {
		return err
	}
	if f, ok := w.out.(interface{ Sync() error }); ok {
		_ = f.Sync()
	} else if fl, ok := w.out.(interface{ Flush() error }); ok {
		_ = fl.Flush()
	}
	return nil
}

// Run executes one analysis pass, writing NDJSON records to out. It never
// returns early on a per-file error: those become kind=error records. It
// returns a non-nil error only for a fatal, pre-analysis condition (the
// input path does not exist, or out is unwritable).
func Run(ctx context.Context, out io.Writer, opts Options) error {
	if _, err := os.Stat(opts.InputPath); err != nil {
		return fmt.Errorf("orchestrator: input path %s: %w", opts.InputPath, err)
	}

	files, err := walker.Walk(opts.InputPath, walker.Options{
		Ignore:       opts.Ignore,
		IncludeGlobs: opts.IncludeGlobs,
		ExcludeGlobs: opts.ExcludeGlobs,
	})
	if err != nil {
		return err
	}

	if err := loadCopybooks(files, opts.Registry); err != nil {
		return err
	}

	w := &writer{out: out}
	start := time.Now()

	if err := w.writeJSON(RunEnvelope{
		Kind:       "run",
		StartedAt:  start.UTC().Format(time.RFC3339),
		InputPath:  opts.InputPath,
		TotalFiles: len(files),
	}); err != nil {
		return fmt.Errorf("orchestrator: write run envelope: %w", err)
	}

	var analyzed, withErrors int64

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			processFile(gctx, path, opts, w, &analyzed, &withErrors)
			return nil
		})
	}
	// per-file errors are captured inside processFile and never returned to
	// the errgroup, so Wait only ever reports a context cancellation.
	if err := g.Wait(); err != nil {
		return fmt.Errorf("orchestrator: run cancelled: %w", err)
	}

	return w.writeJSON(DoneEnvelope{
		Kind:            "done",
		EndedAt:         time.Now().UTC().Format(time.RFC3339),
		FilesAnalyzed:   int(atomic.LoadInt64(&analyzed)),
		FilesWithErrors: int(atomic.LoadInt64(&withErrors)),
		DurationSeconds: time.Since(start).Seconds(),
	})
}

// loadCopybooks reads every .cpy file in files, builds a cobol.Repository
// from them, and injects it into the registered COBOL analyzer so COPY
// expansion can resolve against run-scoped copybooks (spec.md §4.5). A nil
// or disabled COBOL analyzer is a no-op: COPY directives are then left
// unresolved, per cobol.Expand's documented fallback.
func loadCopybooks(files []string, reg *registry.Registry) error {
	an := reg.Lookup(model.LangCOBOL)
	receiver, ok := an.(copybookReceiver)
	if !ok {
		return nil
	}

	var copybooks []cobol.File
	for _, path := range files {
		if !langdetect.IsCopybook(path) {
			continue
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("orchestrator: read copybook %s: %w", path, err)
		}
		copybooks = append(copybooks, cobol.File{Path: path, Source: source})
	}
	receiver.SetCopybooks(cobol.NewRepository(copybooks))
	return nil
}

func processFile(ctx context.Context, path string, opts Options, w *writer, analyzed, withErrors *int64) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	lang, ok := langdetect.Detect(path)
	if !ok {
		return // skip: undetected language, not an error
	}

	an := opts.Registry.Lookup(lang)
	if an == nil {
		return // skip: analyzer disabled by config
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		emitError(w, path, string(lang), err, withErrors)
		return
	}
	source := stripBOM(raw)

	if opts.Config.MaxFileLines > 0 && countLines(source) > opts.Config.MaxFileLines {
		return // skip: above maxFileLines
	}

	result, err := an.Analyze(path, source)
	if err != nil {
		emitError(w, path, string(lang), err, withErrors)
		return
	}

	if opts.Config.HideSQLTableColumns {
		hideSQLColumns(result)
	}

	if err := w.writeJSON(result); err != nil {
		emitError(w, path, string(lang), err, withErrors)
		return
	}
	atomic.AddInt64(analyzed, 1)
}

// hideSQLColumns strips column detail from a SQL result in place when the
// config asks to omit schema column listings (spec.md's hideSqlTableColumns
// option), leaving table/constraint structure intact.
func hideSQLColumns(result any) {
	fa, ok := result.(*model.SQLFileAnalysis)
	if !ok {
		return
	}
	for i := range fa.CreateTables {
		fa.CreateTables[i].Columns = nil
	}
	for i := range fa.AlterTables {
		fa.AlterTables[i].AddedColumns = nil
	}
}

func emitError(w *writer, path, lang string, err error, withErrors *int64) {
	_ = w.writeJSON(ErrorRecord{Kind: "error", File: path, Language: lang, Error: err.Error()})
	atomic.AddInt64(withErrors, 1)
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}

// defaultWorkers mirrors core/filewalker.go's runtime.NumCPU()*2 I/O-bound
// sizing idiom, halved since extraction is CPU-bound rather than I/O-bound.
func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte{'\n'})
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}
