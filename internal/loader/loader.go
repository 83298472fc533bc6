// Package loader drives the pipeline from source files on disk to checked
// function signatures: listing a project's files, loading and
// content-hashing them, parsing and lowering each one, and reporting
// per-file progress as it goes. Grounded on the teacher's
// internal/driver/parallel.go (errgroup-bounded concurrent file
// processing, a shared in-memory module cache plus an on-disk one) and
// internal/driver/dcache.go (content-addressed msgpack persistence),
// narrowed from surge's multi-module import graph down to Dada's flat,
// single-package file set.
package loader

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"dada/internal/ast"
	"dada/internal/check"
	"dada/internal/diag"
	"dada/internal/lower"
	"dada/internal/parser"
	"dada/internal/project"
	"dada/internal/red"
	"dada/internal/source"
	"dada/internal/symir"
)

// Stage names one phase of a single file's trip through the pipeline.
// The zero value names no stage: it is the Stage of the stage-independent
// Queued, Done and Error events checkOneFile sends.
type Stage uint8

const (
	stageNone Stage = iota
	StageParse
	StageLower
	StageCheck
	StageCodegen
)

// Status is a stage-independent outcome: queued, in progress, finished
// cleanly, or finished with a reported error.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress notification emitted while CheckAll processes a
// file. A File-less Event (File == "") carries a pipeline-wide status
// update instead of a per-file one.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// Options configures one CheckAll run.
type Options struct {
	MaxDiagnostics int // per-file diagnostic cap; 0 uses a sane default
	Jobs           int // parallel worker cap; 0 uses GOMAXPROCS
	DiskCacheApp   string // app name for the on-disk cache dir; "" disables it
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 200
	}
	return o.MaxDiagnostics
}

func (o Options) jobs(n int) int {
	j := o.Jobs
	if j <= 0 {
		j = runtime.GOMAXPROCS(0)
	}
	if j > n {
		j = n
	}
	return j
}

// FileResult is one file's outcome: its diagnostics, the signatures it
// declared (nil on a load failure; on a cache hit only their count is kept,
// as that many zero SigID placeholders), and whether parsing/lowering
// reported any error-severity diagnostic.
type FileResult struct {
	Path       string
	FileID     source.FileID
	Bag        *diag.Bag
	Signatures []symir.SigID
	// Names parallels Signatures with each function's declared name;
	// it is nil on a cache hit, since the cache only persists counts.
	Names    []source.StringID
	Broken   bool
	CacheHit bool
}

// ListSourceFiles returns every *.dada file under dir, sorted for a
// deterministic processing order.
func ListSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".dada") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadSourceFile reads one file from disk into fileSet, returning its ID.
func LoadSourceFile(fileSet *source.FileSet, path string) (source.FileID, error) {
	return fileSet.Load(path)
}

// CheckAll loads, parses, and lowers every *.dada file under dir in
// parallel, sharing one symir.Arena and source.Interner across the whole
// run (interning is append-only and cheap to serialize; parsing, the
// expensive part, is not). Progress is reported on the returned channel,
// which is closed once every file has been processed. The caller must
// drain it or the worker goroutines will block delivering events. The returned Arena is the one every FileResult's
// Signatures/Names were interned and lowered against, needed by anything
// (codegen, a REPL) that wants to resolve a SigID back into a signature or
// a Names entry back into its string.
func CheckAll(ctx context.Context, dir string, opts Options) (*source.FileSet, []FileResult, <-chan Event, *symir.Arena, *source.Interner, error) {
	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	events := make(chan Event, len(files)*4+1)
	fileSet := source.NewFileSetWithBase(dir)
	arena := symir.NewArena()
	interner := source.NewInterner()
	if len(files) == 0 {
		close(events)
		return fileSet, nil, events, arena, interner, nil
	}

	fileIDs := make(map[string]source.FileID, len(files))
	loadErrs := make(map[string]error, len(files))
	for _, p := range files {
		id, loadErr := fileSet.Load(p)
		if loadErr != nil {
			loadErrs[p] = loadErr
			continue
		}
		fileIDs[p] = id
	}

	redCache := red.NewCache()
	mcache := NewModuleCache(len(files) * 2)
	var dcache *DiskCache
	if opts.DiskCacheApp != "" {
		dcache, err = OpenDiskCache(opts.DiskCacheApp)
		if err != nil {
			close(events)
			return fileSet, nil, events, arena, interner, err
		}
	}

	results := make([]FileResult, len(files))
	var lowerMu chanSink
	lowerMu.events = events

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs(len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = checkOneFile(gctx, &lowerMu, checkFileDeps{
					path:      path,
					loadErr:   loadErrs[path],
					fileID:    fileIDs[path],
					fileSet:   fileSet,
					interner:  interner,
					arena:     arena,
					red:       redCache,
					mcache:    mcache,
					dcache:    dcache,
					maxDiags:  opts.maxDiagnostics(),
				})
				return nil
			}
		}(i, path))
	}

	go func() {
		_ = g.Wait()
		close(events)
	}()

	return fileSet, results, events, arena, interner, nil
}

// chanSink serializes progress-event delivery and arena mutation across
// the worker pool: the symir.Arena's interning tables have no internal
// locking (by design — most packages only ever touch them single-
// threaded), so every lowering step
// that mutates shared arena state takes this mutex, while parsing (the
// CPU-heavy part with no shared state) runs fully concurrently outside it.
type chanSink struct {
	mu     sync.Mutex
	events chan<- Event
}

func (s *chanSink) emit(ev Event) {
	s.events <- ev
}

func (s *chanSink) withArenaLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

type checkFileDeps struct {
	path     string
	loadErr  error
	fileID   source.FileID
	fileSet  *source.FileSet
	interner *source.Interner
	arena    *symir.Arena
	red      *red.Cache
	mcache   *ModuleCache
	dcache   *DiskCache
	maxDiags int
}

func checkOneFile(ctx context.Context, sink *chanSink, d checkFileDeps) FileResult {
	bag := diag.NewBag(d.maxDiags)
	sink.emit(Event{File: d.path, Status: StatusQueued})

	if d.loadErr != nil {
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{},
			"failed to load file: "+d.loadErr.Error()).Emit()
		sink.emit(Event{File: d.path, Status: StatusError})
		return FileResult{Path: d.path, Bag: bag, Broken: true}
	}

	file := d.fileSet.Get(d.fileID)
	content := project.Digest(file.Hash)

	if sigCount, broken, hit := d.mcache.Get(d.path, content); hit {
		sink.emit(Event{File: d.path, Status: StatusDone})
		return FileResult{Path: d.path, FileID: d.fileID, Bag: bag, Broken: broken, CacheHit: true, Signatures: make([]symir.SigID, sigCount)}
	}
	if payload, hit, _ := d.dcache.Get(content); hit && payload.Path == d.path {
		d.mcache.Put(d.path, content, payload.SigCount, payload.Broken)
		sink.emit(Event{File: d.path, Status: StatusDone})
		return FileResult{Path: d.path, FileID: d.fileID, Bag: bag, Broken: payload.Broken, CacheHit: true, Signatures: make([]symir.SigID, payload.SigCount)}
	}

	sink.emit(Event{File: d.path, Stage: StageParse, Status: StatusWorking})
	reporter := diag.BagReporter{Bag: bag}
	astFile := parser.Parse(file, d.interner, reporter)

	sink.emit(Event{File: d.path, Stage: StageLower, Status: StatusWorking})
	var sigIDs []symir.SigID
	var names []source.StringID
	sink.withArenaLock(func() {
		lw := lower.New(astFile, d.arena, d.interner, reporter)
		for _, item := range astFile.Items {
			if item.Kind == ast.ItemAggregate {
				lw.LowerAggregate(item)
			}
		}

		type fnEntry struct {
			item ast.Item
			sig  symir.SymFunctionSignature
		}
		var fns []fnEntry
		sigsByName := make(map[source.StringID]symir.SymFunctionSignature)
		for _, item := range astFile.Items {
			if item.Kind != ast.ItemFn {
				continue
			}
			sig := lw.LowerSignature(item)
			sigID := d.arena.AddSignature(sig)
			sigIDs = append(sigIDs, sigID)
			names = append(names, item.Name)
			sigsByName[item.Name] = sig
			fns = append(fns, fnEntry{item: item, sig: sig})
		}

		// Name resolution for calls needs every sibling signature, so the
		// per-function check runs in a second pass once sigsByName is
		// complete, one driver (and inference store) per function per
		// spec.md §3's check-lifetime note.
		for _, fn := range fns {
			sink.emit(Event{File: d.path, Stage: StageCheck, Status: StatusWorking})
			driver := check.NewDriver(d.arena, d.red)
			driver.CheckWhereClauses(fn.sig)
			checkFunctionBody(ctx, driver, lw, fn.item, fn.sig, sigsByName, reporter)
		}
	})

	broken := bag.HasErrors()
	d.mcache.Put(d.path, content, len(sigIDs), broken)
	if d.dcache != nil {
		_ = d.dcache.Put(content, &DiskPayload{
			Schema: diskCacheSchemaVersion, Path: d.path, Content: content,
			SigCount: len(sigIDs), Broken: broken,
		})
	}

	if broken {
		sink.emit(Event{File: d.path, Status: StatusError})
	} else {
		sink.emit(Event{File: d.path, Status: StatusDone})
	}

	return FileResult{Path: d.path, FileID: d.fileID, Bag: bag, Signatures: sigIDs, Names: names, Broken: broken}
}
