package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/filesift/filesift/internal/model"
)

// HierarchyStrategy is the capability-checked interface for multi-level
// classification. The flat resolver consults it once per file; the no-op
// default keeps the flat stages in charge.
type HierarchyStrategy interface {
	Enabled() bool
	// Classify returns up to MaxDepth path segments for the file, honoring
	// the active rule set.
	Classify(path string, rules model.RuleSet) []string
	// RecommendDepth derives a classification depth from the number of
	// files observed for a type: fewer files mean a shallower tree.
	RecommendDepth(fileCount int) int
}

// NoopHierarchy disables hierarchical classification.
type NoopHierarchy struct{}

// Enabled always reports false.
func (NoopHierarchy) Enabled() bool { return false }

// Classify returns nil.
func (NoopHierarchy) Classify(string, model.RuleSet) []string { return nil }

// RecommendDepth returns the minimum depth.
func (NoopHierarchy) RecommendDepth(int) int { return 2 }

// HierarchyConfig tunes the detailed hierarchy.
type HierarchyConfig struct {
	Granularity            model.DateGranularity
	MaxDepth               int
	MinFilesForSubdivision int
	ProjectDetection       bool
}

// DefaultHierarchyConfig returns the standard hierarchy settings.
func DefaultHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		Granularity:            model.GranularityMonth,
		MaxDepth:               5,
		MinFilesForSubdivision: 20,
		ProjectDetection:       true,
	}
}

// DetailedHierarchy classifies files into a nested taxonomy: primary type,
// secondary and tertiary subtypes, project placement, date path and a
// usage-recency bucket.
type DetailedHierarchy struct {
	cfg HierarchyConfig
}

// NewDetailedHierarchy creates the detailed hierarchy strategy.
func NewDetailedHierarchy(cfg HierarchyConfig) *DetailedHierarchy {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 5
	}
	if cfg.MinFilesForSubdivision <= 0 {
		cfg.MinFilesForSubdivision = 20
	}
	if cfg.Granularity == "" {
		cfg.Granularity = model.GranularityMonth
	}
	return &DetailedHierarchy{cfg: cfg}
}

// Enabled always reports true.
func (h *DetailedHierarchy) Enabled() bool { return true }

// Classify builds the hierarchical path for a file.
func (h *DetailedHierarchy) Classify(path string, rules model.RuleSet) []string {
	maxDepth := h.cfg.MaxDepth
	var segments []string

	if rules.Contains(model.RuleByType) {
		primary, primaryNode := h.primaryType(path)
		segments = append(segments, primary)
		if primaryNode != nil && len(segments) < maxDepth {
			if secondary, secondaryNode := secondaryType(path, primaryNode); secondary != "" {
				segments = append(segments, secondary)
				if secondaryNode != nil && len(segments) < maxDepth {
					if tertiary := tertiaryType(path, primary, secondary, secondaryNode); tertiary != "" {
						segments = append(segments, tertiary)
					}
				}
			}
		}
	}

	if rules.Contains(model.RuleByPattern) && len(segments) < maxDepth {
		if category := matchFilenamePattern(path); category != "" && !contains(segments, category) {
			segments = append(segments, category)
		}
	}

	if rules.Contains(model.RuleByProject) && len(segments) < maxDepth {
		segments = append(segments, h.projectSegments(path)...)
	}

	if rules.Contains(model.RuleByDate) && len(segments) < maxDepth {
		parts := datePath(path, h.cfg.Granularity)
		if need := maxDepth - len(segments); len(parts) > need {
			parts = parts[:need]
		}
		segments = append(segments, parts...)
	}

	if rules.Contains(model.RuleByUsage) && len(segments) < maxDepth {
		if bucket := usageBucket(path, time.Now()); bucket != "" {
			segments = append(segments, bucket)
		}
	}

	if len(segments) > maxDepth {
		segments = segments[:maxDepth]
	}
	return segments
}

// RecommendDepth maps a file count onto a classification depth.
func (h *DetailedHierarchy) RecommendDepth(fileCount int) int {
	switch {
	case fileCount < h.cfg.MinFilesForSubdivision:
		return 2
	case fileCount < 100:
		return 3
	case fileCount < 500:
		return 4
	default:
		return h.cfg.MaxDepth
	}
}

func (h *DetailedHierarchy) primaryType(path string) (string, *typeNode) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, primary := range detailedTaxonomy {
		if primary.node.containsExt(ext) {
			node := primary.node
			return primary.name, &node
		}
	}
	switch mimeCategory(ext) {
	case "images":
		return "images", nil
	case "videos", "audio":
		return "media", nil
	case "documents":
		return "documents", nil
	case "archives":
		return "system", nil
	}
	return model.CategoryOthers, nil
}

func secondaryType(path string, primary *typeNode) (string, *typeNode) {
	ext := strings.ToLower(filepath.Ext(path))

	// Filename-pattern recognition takes priority over plain extension
	// membership.
	if category := matchFilenamePattern(path); category != "" {
		for _, child := range primary.children {
			if child.name == category || child.node.hasChild(category) {
				node := child.node
				return child.name, &node
			}
		}
	}

	for _, child := range primary.children {
		if child.node.containsExt(ext) {
			node := child.node
			return child.name, &node
		}
	}

	if len(primary.children) > 0 {
		node := primary.children[0].node
		return primary.children[0].name, &node
	}
	return "", nil
}

func tertiaryType(path, primary, secondary string, node *typeNode) string {
	if len(node.children) == 0 {
		if primary == "media" {
			return mediaSizeBucket(path, secondary)
		}
		return ""
	}

	ext := strings.ToLower(filepath.Ext(path))

	if category := matchFilenamePattern(path); category != "" {
		for _, child := range node.children {
			if strings.Contains(child.name, category) || strings.Contains(category, child.name) {
				return child.name
			}
		}
	}

	for _, child := range node.children {
		if child.node.containsExt(ext) {
			return child.name
		}
	}

	if primary == "media" {
		return mediaSizeBucket(path, secondary)
	}
	return ""
}

// mediaSizeBucket splits media files by size when neither pattern nor
// extension picked a tertiary subtype.
func mediaSizeBucket(path, mediaType string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	size := info.Size()
	switch mediaType {
	case "videos":
		switch {
		case size > 1<<30:
			return "movies"
		case size > 100<<20:
			return "long_videos"
		default:
			return "clips"
		}
	case "audio":
		switch {
		case size > 50<<20:
			return "albums"
		case size > 10<<20:
			return "long_tracks"
		default:
			return "singles"
		}
	}
	return ""
}

// projectSegments places files living inside a recognizable project tree
// under projects/<kind>/<root>.
func (h *DetailedHierarchy) projectSegments(path string) []string {
	if !h.cfg.ProjectDetection {
		return nil
	}

	parents := parentNames(path, 5)
	switch {
	case anyOf(parents, "node_modules", "public", "src"):
		if root := findProjectRoot(path, []string{"package.json", "yarn.lock"}); root != "" {
			return []string{"projects", "web", filepath.Base(root)}
		}
	case anyOf(parents, "__pycache__", "lib", "src"):
		if root := findProjectRoot(path, []string{"requirements.txt", "setup.py", "pyproject.toml"}); root != "" {
			return []string{"projects", "python", filepath.Base(root)}
		}
	case anyOf(parents, "target", "build", "src"):
		if root := findProjectRoot(path, []string{"pom.xml", "build.gradle"}); root != "" {
			return []string{"projects", "java", filepath.Base(root)}
		}
	}
	return nil
}

// datePath expands the modification time into nested segments down to the
// configured granularity.
func datePath(path string, g model.DateGranularity) []string {
	info, err := os.Stat(path)
	if err != nil {
		return []string{segmentUnknownDate}
	}
	t := info.ModTime()

	parts := []string{t.Format("2006")}
	if g == model.GranularityQuarter || g == model.GranularityMonth || g == model.GranularityWeek {
		parts = append(parts, fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1))
	}
	if g == model.GranularityMonth || g == model.GranularityWeek {
		parts = append(parts, t.Format("01-January"))
	}
	if g == model.GranularityWeek {
		_, week := t.ISOWeek()
		parts = append(parts, fmt.Sprintf("Week%02d", week))
	}
	return parts
}

// usageBucket classifies by last-access age. On platforms without a usable
// access time the modification time stands in.
func usageBucket(path string, now time.Time) string {
	at, err := accessTime(path)
	if err != nil {
		return ""
	}
	days := now.Sub(at).Hours() / 24
	switch {
	case days < 7:
		return "recent"
	case days < 30:
		return "this_month"
	case days < 365:
		return "this_year"
	default:
		return "archive"
	}
}

func parentNames(path string, limit int) []string {
	var names []string
	dir := filepath.Dir(path)
	for i := 0; i < limit; i++ {
		base := filepath.Base(dir)
		if base == "/" || base == "." || base == dir {
			break
		}
		names = append(names, strings.ToLower(base))
		dir = filepath.Dir(dir)
	}
	return names
}

func findProjectRoot(path string, indicators []string) string {
	dir := filepath.Dir(path)
	for {
		for _, ind := range indicators {
			if _, err := os.Stat(filepath.Join(dir, ind)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func anyOf(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
