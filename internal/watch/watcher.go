// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/nxadm/tail"
	"go.uber.org/zap"

	"github.com/elastic/chartcat/internal/histogram"
)

// DefaultMaxHits bounds the window a Follower keeps in memory.
const DefaultMaxHits = 10000

// HitHandler is called for each hit read from a file
type HitHandler func(hit histogram.SearchHit)

// Follower tails span or log files and keeps the most recent hits.
type Follower struct {
	files     []string
	maxHits   int
	fromStart bool
	poll      bool
	logger    *zap.Logger

	mu       sync.Mutex
	hits     []histogram.SearchHit
	handlers []HitHandler
	ctx      context.Context
	cancel   context.CancelFunc
}

// Config holds follower configuration
type Config struct {
	Files []string
	// MaxHits bounds the kept window. Older hits are dropped first.
	MaxHits int
	// FromStart reads existing file content before following.
	FromStart bool
	// Poll uses polling instead of inotify (more reliable across filesystems).
	Poll   bool
	Logger *zap.Logger
}

// New creates a new Follower
func New(cfg Config) (*Follower, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Expand globs
	var files []string
	for _, pattern := range cfg.Files {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// A literal file that doesn't exist yet is followed once created.
			if _, err := os.Stat(pattern); os.IsNotExist(err) {
				logger.Warn("file does not exist, waiting for creation", zap.String("file", pattern))
			}
			files = append(files, pattern)
		} else {
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	maxHits := cfg.MaxHits
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Follower{
		files:     files,
		maxHits:   maxHits,
		fromStart: cfg.FromStart,
		poll:      cfg.Poll,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// AddHandler adds a hit handler
func (f *Follower) AddHandler(h HitHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, h)
}

// Start follows all files until ctx is done or Stop is called.
func (f *Follower) Start(ctx context.Context) error {
	stop := context.AfterFunc(ctx, f.cancel)
	defer stop()

	var wg sync.WaitGroup
	for _, file := range f.files {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := f.followFile(name); err != nil {
				f.logger.Error("follow failed", zap.String("file", name), zap.Error(err))
			}
		}(file)
	}

	<-f.ctx.Done()
	wg.Wait()
	return nil
}

// Stop stops following all files
func (f *Follower) Stop() {
	f.cancel()
}

// Files returns the list of files being followed (after glob expansion)
func (f *Follower) Files() []string {
	out := make([]string, len(f.files))
	copy(out, f.files)
	return out
}

// Len returns the number of hits currently kept.
func (f *Follower) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits)
}

// Snapshot returns the kept hits as a search result. The result shares no
// slices with the follower.
func (f *Follower) Snapshot() *histogram.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	hits := make([]histogram.SearchHit, len(f.hits))
	copy(hits, f.hits)
	return &histogram.SearchResult{Hits: histogram.Hits{Hits: hits, Total: int64(len(hits))}}
}

// ReadAll reads every line of every file once and returns the number of
// hits added. It does not follow.
func (f *Follower) ReadAll() (int, error) {
	total := 0
	for _, name := range f.files {
		t, err := tail.TailFile(name, tail.Config{MustExist: true, Logger: tail.DiscardingLogger})
		if err != nil {
			return total, fmt.Errorf("failed to read %s: %w", name, err)
		}
		n, err := f.consume(name, t)
		total += n
		_ = t.Stop()
		t.Cleanup()
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (f *Follower) consume(name string, t *tail.Tail) (int, error) {
	n := 0
	lineNo := 0
	for line := range t.Lines {
		if line.Err != nil {
			return n, fmt.Errorf("error reading %s: %w", name, line.Err)
		}
		lineNo++
		if hit, ok := ParseLine(line.Text, name, lineNo); ok {
			f.add(hit)
			n++
		}
	}
	return n, nil
}

func (f *Follower) followFile(name string) error {
	cfg := tail.Config{
		Follow:    true,
		ReOpen:    true,  // Handle file rotation
		MustExist: false, // Allow following files that don't exist yet
		Poll:      f.poll,
		Logger:    tail.DiscardingLogger,
	}
	if !f.fromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(name, cfg)
	if err != nil {
		return fmt.Errorf("failed to tail %s: %w", name, err)
	}
	// The tail is released here even when it started after cancellation.
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	lineNo := 0
	for {
		select {
		case <-f.ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				f.logger.Warn("read error", zap.String("file", name), zap.Error(line.Err))
				continue
			}
			lineNo++
			if hit, ok := ParseLine(line.Text, name, lineNo); ok {
				f.add(hit)
			}
		}
	}
}

// add appends hit, drops the oldest hits beyond maxHits and notifies handlers.
func (f *Follower) add(hit histogram.SearchHit) {
	f.mu.Lock()
	f.hits = append(f.hits, hit)
	if over := len(f.hits) - f.maxHits; over > 0 {
		f.hits = f.hits[over:]
	}
	handlers := make([]HitHandler, len(f.handlers))
	copy(handlers, f.handlers)
	f.mu.Unlock()

	for _, h := range handlers {
		h(hit)
	}
}
