package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/winjanitor/winjanitor/internal/policy"
	"github.com/winjanitor/winjanitor/internal/privilege"
	"github.com/winjanitor/winjanitor/internal/winpath"
)

// Engine runs one scan across the enabled categories. Categories are
// processed sequentially; a failure in one category is summarized into the
// result and never aborts the others.
type Engine struct {
	policy   *policy.Policy
	priv     privilege.Checker
	roots    winpath.Roots
	scanners map[JunkCategory]CategoryScanner
	log      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithScanner replaces the scanner for one category. Used by tests.
func WithScanner(s CategoryScanner) EngineOption {
	return func(e *Engine) { e.scanners[s.Category()] = s }
}

// NewEngine builds an Engine over the given roots, policy and privilege
// capability.
func NewEngine(roots winpath.Roots, pol *policy.Policy, priv privilege.Checker, opts ...EngineOption) *Engine {
	e := &Engine{
		policy: pol,
		priv:   priv,
		roots:  roots,
		scanners: map[JunkCategory]CategoryScanner{
			CategoryTempFiles:      NewTempScanner(roots),
			CategoryUpdateCache:    NewUpdateCacheScanner(roots),
			CategoryRecycleBin:     NewRecycleBinScanner(roots),
			CategoryBrowserCache:   NewBrowserCacheScanner(roots),
			CategoryThumbnailCache: NewThumbnailCacheScanner(roots),
		},
		log: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Scan walks every enabled category and aggregates the result. onProgress
// is called once before each category with floor(index/total*100) and once
// more with ("", 100) after the last category, including failed or
// privilege-skipped ones. Cancellation is observed only at category
// boundaries; a cancelled scan returns ctx.Err() instead of a result.
func (e *Engine) Scan(ctx context.Context, cfg ScanConfig, onProgress ProgressFunc) (*ScanResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if onProgress == nil {
		onProgress = func(string, int) {}
	}

	start := time.Now()
	elevated := e.priv.IsElevated()
	e.log.Info("scan starting", "elevated", elevated)

	result := &ScanResult{
		Categories: make(map[JunkCategory][]FileRecord),
	}
	walker := NewWalker(e.policy, e.log, cfg.ExcludedPaths, cfg.MaxFileAgeDays)

	enabled := e.enabledOrder(cfg)
	total := len(enabled)

	for i, cat := range enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		onProgress("Scanning: "+cat.Label(), i*100/total)

		if cat.RequiresElevation() && !elevated {
			result.Categories[cat] = nil
			result.Inaccessible = append(result.Inaccessible, cat)
			result.Errors = append(result.Errors,
				fmt.Sprintf("category %s requires administrator privileges", cat.Label()))
			e.log.Warn("category skipped, requires elevation", "category", cat.String())
			continue
		}

		files, err := e.scanCategory(cat, cfg, walker)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("scanning %s failed: %v", cat.Label(), err))
			result.Categories[cat] = nil
			continue
		}
		result.Categories[cat] = files
	}

	onProgress("", 100)

	for _, files := range result.Categories {
		result.TotalCount += len(files)
		for _, f := range files {
			result.TotalSize += f.Size
		}
	}
	result.RequiresAdmin = len(result.Inaccessible) > 0
	result.Duration = time.Since(start)

	e.log.Info("scan complete",
		"files", result.TotalCount,
		"bytes", result.TotalSize,
		"duration", result.Duration,
		"errors", len(result.Errors))
	return result, nil
}

// enabledOrder returns the categories to process in the fixed enum order.
// Custom folders join as a trailing pseudo-category whenever any are
// configured.
func (e *Engine) enabledOrder(cfg ScanConfig) []JunkCategory {
	var cats []JunkCategory
	for _, c := range AllCategories() {
		if c == CategoryCustom {
			if len(cfg.CustomFolders) > 0 {
				cats = append(cats, c)
			}
			continue
		}
		if cfg.Enabled[c] {
			cats = append(cats, c)
		}
	}
	return cats
}

// scanCategory shields the engine from a misbehaving scanner: a panic is
// converted into the category's diagnostic error.
func (e *Engine) scanCategory(cat JunkCategory, cfg ScanConfig, w *Walker) (files []FileRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			files = nil
			err = fmt.Errorf("scanner panic: %v", r)
		}
	}()

	var s CategoryScanner
	if cat == CategoryCustom {
		s = NewCustomScanner(cfg.CustomFolders)
	} else {
		s = e.scanners[cat]
	}
	if s == nil {
		return nil, fmt.Errorf("no scanner registered")
	}
	return s.Scan(w), nil
}
