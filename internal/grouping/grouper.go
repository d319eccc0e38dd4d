// Package grouping clusters related files so classification never splits a
// dependent set: project directories, program+library pairs, web pages
// with their assets, media with subtitles, and same-stem families.
package grouping

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/filesift/filesift/internal/common"
	"github.com/filesift/filesift/internal/model"
)

// projectIndicators mark a directory as a project root: the whole
// directory becomes one atomic group.
var projectIndicators = []string{
	"package.json", "requirements.txt", "pom.xml", "cargo.toml",
	"go.mod", "composer.json", ".gitignore", "readme.md",
}

var (
	codeExtensions   = extSet(".py", ".js", ".java", ".go", ".rs", ".php", ".c", ".cpp")
	configExtensions = extSet(".json", ".yaml", ".yml", ".toml", ".ini", ".cfg")

	programMainExts    = extSet(".exe", ".app", ".jar")
	programRelatedExts = extSet(".dll", ".so", ".dylib", ".lib", ".ini", ".cfg", ".config")

	webMainExts    = extSet(".html", ".htm")
	webRelatedExts = extSet(".css", ".js", ".png", ".jpg", ".gif", ".svg")

	mediaMainExts    = extSet(".mp4", ".avi", ".mkv")
	mediaRelatedExts = extSet(".srt", ".ass", ".vtt", ".nfo", ".jpg")
)

// mainFilePriority orders extensions when picking the file that decides a
// group's target folder.
var mainFilePriority = [][]string{
	{".exe", ".app", ".jar"},
	{".html", ".htm"},
	{".py", ".js", ".java"},
	{".mp4", ".avi", ".mkv"},
	{".pdf", ".docx"},
}

func extSet(exts ...string) map[string]bool {
	s := make(map[string]bool, len(exts))
	for _, e := range exts {
		s[e] = true
	}
	return s
}

// Config tunes the grouper.
type Config struct {
	// SkipMarker names a file whose presence excludes a directory and its
	// subtree from scanning. Empty disables the check.
	SkipMarker string
	// DensityThreshold is the (code+config)/total ratio above which a
	// directory without an indicator file still counts as a project.
	DensityThreshold float64
	// MinCodeFiles is the minimum number of code files for density-based
	// project detection.
	MinCodeFiles int
}

// DefaultConfig returns the standard grouping thresholds.
func DefaultConfig() Config {
	return Config{
		SkipMarker:       ".noclassify",
		DensityThreshold: 0.5,
		MinCodeFiles:     2,
	}
}

// Grouper implements association analysis over a directory tree.
type Grouper struct {
	cfg Config
}

// New creates a grouper.
func New(cfg Config) *Grouper {
	if cfg.DensityThreshold <= 0 {
		cfg.DensityThreshold = 0.5
	}
	if cfg.MinCodeFiles <= 0 {
		cfg.MinCodeFiles = 2
	}
	return &Grouper{cfg: cfg}
}

// Analyze scans root and partitions every file into exactly one group.
func (g *Grouper) Analyze(ctx context.Context, root string) (*model.GroupingReport, error) {
	files, err := CollectFiles(root, g.cfg.SkipMarker)
	if err != nil {
		return nil, err
	}
	return g.GroupFiles(ctx, root, files)
}

// GroupFiles partitions an already-collected file list. Passes run in
// strict priority order per directory; each pass claims its members so
// later passes only see the remainder.
func (g *Grouper) GroupFiles(ctx context.Context, root string, files []string) (*model.GroupingReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byDir := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		byDir[dir] = append(byDir[dir], f)
	}

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	claimed := make(map[string]bool)
	var groups []model.AssociationGroup

	for _, dir := range dirs {
		inDir := byDir[dir]
		sort.Strings(inDir)

		remaining := unclaimed(inDir, claimed)
		if len(remaining) == 0 {
			continue
		}

		if g.isProjectDir(remaining) {
			groups = append(groups, newGroup(model.GroupProject, remaining))
			markClaimed(claimed, remaining)
			continue
		}

		for _, pass := range []struct {
			kind    model.GroupKind
			collect func([]string, map[string]bool) [][]string
		}{
			{model.GroupProgram, collectProgramGroups},
			{model.GroupWeb, collectWebGroups},
			{model.GroupMedia, collectMediaGroups},
			{model.GroupSameStem, collectSameStemGroups},
		} {
			for _, members := range pass.collect(inDir, claimed) {
				groups = append(groups, newGroup(pass.kind, members))
				markClaimed(claimed, members)
			}
		}
	}

	// Residual bucket: unclaimed files are classified independently.
	individual := unclaimed(files, claimed)
	if len(individual) > 0 {
		sort.Strings(individual)
		groups = append(groups, model.AssociationGroup{
			ID:      uuid.NewString(),
			Kind:    model.GroupIndividual,
			Members: individual,
		})
	}

	return &model.GroupingReport{
		Root:       root,
		TotalFiles: len(files),
		Groups:     groups,
	}, nil
}

// isProjectDir reports whether a directory's remaining files form one
// atomic project group.
func (g *Grouper) isProjectDir(files []string) bool {
	names := make(map[string]bool, len(files))
	for _, f := range files {
		names[strings.ToLower(filepath.Base(f))] = true
	}
	for _, ind := range projectIndicators {
		if names[ind] {
			return true
		}
	}

	var codeCount, configCount int
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		switch {
		case codeExtensions[ext]:
			codeCount++
		case configExtensions[ext]:
			configCount++
		}
	}
	return codeCount >= g.cfg.MinCodeFiles &&
		float64(codeCount+configCount) >= float64(len(files))*g.cfg.DensityThreshold
}

func collectProgramGroups(files []string, claimed map[string]bool) [][]string {
	var groups [][]string
	for _, main := range files {
		if claimed[main] || !programMainExts[strings.ToLower(filepath.Ext(main))] {
			continue
		}
		group := []string{main}
		for _, f := range files {
			if f == main || claimed[f] {
				continue
			}
			// Shared libraries and configs in the same directory belong
			// with the executable whether or not the stem matches.
			if programRelatedExts[strings.ToLower(filepath.Ext(f))] {
				group = append(group, f)
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
			markClaimed(claimed, group)
		}
	}
	return groups
}

func collectWebGroups(files []string, claimed map[string]bool) [][]string {
	var groups [][]string
	for _, main := range files {
		if claimed[main] || !webMainExts[strings.ToLower(filepath.Ext(main))] {
			continue
		}
		mainStem := stem(main)
		group := []string{main}
		for _, f := range files {
			if f == main || claimed[f] {
				continue
			}
			if strings.HasPrefix(stem(f), mainStem) && webRelatedExts[strings.ToLower(filepath.Ext(f))] {
				group = append(group, f)
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
			markClaimed(claimed, group)
		}
	}
	return groups
}

func collectMediaGroups(files []string, claimed map[string]bool) [][]string {
	var groups [][]string
	for _, main := range files {
		if claimed[main] || !mediaMainExts[strings.ToLower(filepath.Ext(main))] {
			continue
		}
		mainStem := stem(main)
		group := []string{main}
		for _, f := range files {
			if f == main || claimed[f] {
				continue
			}
			if stem(f) == mainStem && mediaRelatedExts[strings.ToLower(filepath.Ext(f))] {
				group = append(group, f)
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
			markClaimed(claimed, group)
		}
	}
	return groups
}

func collectSameStemGroups(files []string, claimed map[string]bool) [][]string {
	byStem := make(map[string][]string)
	for _, f := range files {
		if claimed[f] {
			continue
		}
		byStem[stem(f)] = append(byStem[stem(f)], f)
	}

	stems := make([]string, 0, len(byStem))
	for s, members := range byStem {
		if len(members) > 1 {
			stems = append(stems, s)
		}
	}
	sort.Strings(stems)

	var groups [][]string
	for _, s := range stems {
		group := byStem[s]
		groups = append(groups, group)
		markClaimed(claimed, group)
	}
	return groups
}

// MainFile picks the member whose classification decides the group's
// target folder, using a fixed extension-priority order.
func MainFile(members []string) string {
	if len(members) == 0 {
		return ""
	}
	for _, tier := range mainFilePriority {
		for _, f := range members {
			ext := strings.ToLower(filepath.Ext(f))
			for _, e := range tier {
				if ext == e {
					return f
				}
			}
		}
	}
	return members[0]
}

// CollectFiles walks root and returns every regular file, skipping
// directories that contain the marker file and skipping unreadable
// directories silently. A root that is itself a file yields that file.
func CollectFiles(root, skipMarker string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", common.NewUserError("source is not accessible", err))
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if skipMarker != "" {
				if _, markerErr := os.Stat(filepath.Join(path, skipMarker)); markerErr == nil {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if d.Type().IsRegular() && filepath.Base(path) != skipMarker {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, walkErr)
	}
	sort.Strings(files)
	return files, nil
}

func newGroup(kind model.GroupKind, members []string) model.AssociationGroup {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return model.AssociationGroup{
		ID:       uuid.NewString(),
		Kind:     kind,
		MainFile: MainFile(sorted),
		Members:  sorted,
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func unclaimed(files []string, claimed map[string]bool) []string {
	var out []string
	for _, f := range files {
		if !claimed[f] {
			out = append(out, f)
		}
	}
	return out
}

func markClaimed(claimed map[string]bool, files []string) {
	for _, f := range files {
		claimed[f] = true
	}
}
