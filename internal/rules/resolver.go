// Package rules implements target-folder resolution for the classification
// pipeline: custom wildcard rules, type/date/size stages, and the optional
// hierarchical strategy.
package rules

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/filesift/filesift/internal/model"
)

// Sentinel segments used when filesystem metadata is unreadable. A stat
// failure during date or size resolution never aborts classification.
const (
	segmentUncategorized = "uncategorized"
	segmentUnknownDate   = "unknown-date"
	segmentUnknownSize   = "unknown-size"
)

// Options configures a Resolver.
type Options struct {
	Rules       model.RuleSet
	CustomRules []model.CustomRule
	Taxonomy    model.TypeTaxonomy
	Granularity model.DateGranularity
	Hierarchy   HierarchyStrategy
}

// Resolver maps a file to the relative path segments of its target
// subdirectory. It is safe for concurrent use: rule state is built in
// NewResolver and the depth limit is atomic.
type Resolver struct {
	hierarchy   HierarchyStrategy
	taxonomy    model.TypeTaxonomy
	granularity model.DateGranularity
	rules       model.RuleSet
	custom      []compiledCustomRule

	// depthLimit caps hierarchical segments for the current run; zero
	// means the strategy's own maximum applies.
	depthLimit atomic.Int32
}

type compiledCustomRule struct {
	re     *regexp.Regexp
	target string
}

// NewResolver creates a resolver with pre-compiled custom rule patterns.
// Rules with invalid patterns are skipped; disabled rules never match.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		rules:       opts.Rules,
		taxonomy:    opts.Taxonomy,
		granularity: opts.Granularity,
		hierarchy:   opts.Hierarchy,
	}
	if r.taxonomy == nil {
		r.taxonomy = model.DefaultTaxonomy()
	}
	if r.granularity == "" {
		r.granularity = model.GranularityMonth
	}
	if r.hierarchy == nil {
		r.hierarchy = NoopHierarchy{}
	}
	for _, rule := range opts.CustomRules {
		if !rule.Enabled || rule.Pattern == "" || rule.TargetFolder == "" {
			continue
		}
		re, err := compileWildcard(rule.Pattern)
		if err != nil {
			continue
		}
		r.custom = append(r.custom, compiledCustomRule{re: re, target: rule.TargetFolder})
	}
	return r
}

// TargetFor returns the ordered path segments for the file's target
// subdirectory. Resolution is deterministic for a fixed rule set, taxonomy
// and metadata snapshot, except for the usage stage which depends on the
// current time.
func (r *Resolver) TargetFor(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Custom rules override everything else.
	if r.rules.Contains(model.RuleByCustom) {
		if target, ok := r.applyCustomRules(path); ok {
			return strings.Split(filepath.ToSlash(target), "/"), nil
		}
	}

	if r.hierarchy.Enabled() {
		segments := r.hierarchy.Classify(path, r.rules)
		if len(segments) == 0 {
			segments = []string{segmentUncategorized}
		}
		if limit := int(r.depthLimit.Load()); limit > 0 && len(segments) > limit {
			segments = segments[:limit]
		}
		return segments, nil
	}

	var segments []string
	if r.rules.Contains(model.RuleByType) {
		segments = append(segments, r.typeSegment(path))
	}
	if r.rules.Contains(model.RuleByDate) {
		segments = append(segments, r.dateSegment(path))
	}
	if r.rules.Contains(model.RuleBySize) {
		segments = append(segments, r.sizeSegment(path))
	}
	if len(segments) == 0 {
		segments = []string{segmentUncategorized}
	}
	return segments, nil
}

// AdaptDepth bounds hierarchical classification depth to what the strategy
// recommends for the given number of files. No-op for flat rule sets.
func (r *Resolver) AdaptDepth(fileCount int) {
	if !r.hierarchy.Enabled() {
		return
	}
	r.depthLimit.Store(int32(r.hierarchy.RecommendDepth(fileCount)))
}

// applyCustomRules returns the target folder of the first enabled rule
// whose pattern matches the filename.
func (r *Resolver) applyCustomRules(path string) (string, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, rule := range r.custom {
		if rule.re.MatchString(name) {
			return rule.target, true
		}
	}
	return "", false
}

func (r *Resolver) typeSegment(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if category := r.taxonomy.Category(ext); category != model.CategoryOthers {
		return category
	}
	if category := mimeCategory(ext); category != "" {
		return category
	}
	return model.CategoryOthers
}

func (r *Resolver) dateSegment(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return segmentUnknownDate
	}
	return formatDateSegment(info.ModTime(), r.granularity)
}

func formatDateSegment(t time.Time, g model.DateGranularity) string {
	switch g {
	case model.GranularityYear:
		return t.Format("2006")
	case model.GranularityQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case model.GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// Size bucket boundaries.
const (
	sizeSmallLimit  = 1 << 20   // 1MB
	sizeMediumLimit = 10 << 20  // 10MB
	sizeLargeLimit  = 100 << 20 // 100MB
)

func (r *Resolver) sizeSegment(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return segmentUnknownSize
	}
	switch size := info.Size(); {
	case size < sizeSmallLimit:
		return "small"
	case size < sizeMediumLimit:
		return "medium"
	case size < sizeLargeLimit:
		return "large"
	default:
		return "huge"
	}
}

// mimeCategory sniffs a coarse category from the extension's MIME type for
// extensions the taxonomy does not know.
func mimeCategory(ext string) string {
	mimeType := mime.TypeByExtension(ext)
	switch {
	case mimeType == "":
		return ""
	case strings.HasPrefix(mimeType, "image/"):
		return "images"
	case strings.HasPrefix(mimeType, "video/"):
		return "videos"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.HasPrefix(mimeType, "text/"):
		return "documents"
	case strings.Contains(mimeType, "pdf"):
		return "documents"
	case strings.Contains(mimeType, "zip"), strings.Contains(mimeType, "tar"),
		strings.Contains(mimeType, "compressed"):
		return "archives"
	}
	return ""
}

// compileWildcard translates a shell-style wildcard into a case-insensitive
// anchored regexp. Only * and ? are special.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, ch := range pattern {
		switch ch {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
