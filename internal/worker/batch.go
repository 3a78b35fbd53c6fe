package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/customsdoc/internal/model"
)

// Ingester parses one file into a canonical document
type Ingester interface {
	IngestFile(ctx context.Context, path string) (*model.CanonicalDocument, error)
}

// ParseJob parses a single file
type ParseJob struct {
	Path     string
	Ingester Ingester
}

// Execute runs the ingester, turning a panic into an error result
func (j *ParseJob) Execute(ctx context.Context) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = &ParseResult{Path: j.Path, Error: fmt.Errorf("panic: %v", r), Duration: time.Since(start)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return &ParseResult{Path: j.Path, Error: err}
	}

	doc, err := j.Ingester.IngestFile(ctx, j.Path)
	return &ParseResult{
		Path:     j.Path,
		Document: doc,
		Error:    err,
		Duration: time.Since(start),
	}
}

// ParseResult is the outcome of a ParseJob
type ParseResult struct {
	Path     string
	Document *model.CanonicalDocument
	Error    error
	Duration time.Duration
}

// GetError returns the parse error
func (r *ParseResult) GetError() error {
	return r.Error
}

// BatchProcessor parses many files concurrently
type BatchProcessor struct {
	ingester    Ingester
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(ingester Ingester, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		ingester:    ingester,
		concurrency: concurrency,
	}
}

// ProcessFiles parses paths and returns one result per path, in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*ParseResult {
	if len(paths) == 0 {
		return []*ParseResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ParseJob{Path: path, Ingester: b.ingester})
	}

	results := pool.Wait()

	out := make([]*ParseResult, len(paths))
	for i, r := range results {
		if r == nil {
			out[i] = &ParseResult{Path: paths[i], Error: fmt.Errorf("not processed: %w", context.Cause(ctx))}
			continue
		}
		out[i] = r.(*ParseResult)
	}
	return out
}

// CollectPaths expands target into the files to parse. A directory yields its
// regular files (non-recursive, sorted) accepted by keep; any other file is
// read as a list with one path per line, relative paths resolved against the
// list's directory.
func CollectPaths(target string, keep func(path string) bool) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}

	if !info.IsDir() {
		return ReadPathsFromFile(target)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(target, e.Name())
		if keep == nil || keep(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadPathsFromFile reads paths from a list file (one per line, "#" comments,
// duplicates dropped)
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
