package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/model"
)

func TestDetailedHierarchyByType(t *testing.T) {
	h := NewDetailedHierarchy(DefaultHierarchyConfig())

	tests := []struct {
		path string
		want []string
	}{
		{"Screenshot 2024-05-01.png", []string{"images", "graphics", "screenshots"}},
		{"song.mp3", []string{"media", "audio", "music"}},
		{"meeting_notes.txt", []string{"documents", "personal", "notes"}},
		{"server.go", []string{"development", "source_code", "web_backend"}},
		{"setup.msi", []string{"system", "executables", "installers"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Classify(tt.path, model.RuleSet{model.RuleByType}))
		})
	}
}

func TestAdaptDepthBoundsHierarchySegments(t *testing.T) {
	r := NewResolver(Options{
		Rules:     model.RuleSet{model.RuleByType},
		Hierarchy: NewDetailedHierarchy(DefaultHierarchyConfig()),
	})

	full := resolve(t, r, "Screenshot 2024-05-01.png")
	assert.Equal(t, []string{"images", "graphics", "screenshots"}, full)

	// A handful of files recommends a two-level tree.
	r.AdaptDepth(5)
	assert.Equal(t, []string{"images", "graphics"}, resolve(t, r, "Screenshot 2024-05-01.png"))

	r.AdaptDepth(150)
	assert.Len(t, resolve(t, r, "Screenshot 2024-05-01.png"), 3)
}

func TestDetailedHierarchyMediaSizeBucket(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(clip, make([]byte, 1024), 0o644))

	h := NewDetailedHierarchy(DefaultHierarchyConfig())
	got := h.Classify(clip, model.RuleSet{model.RuleByType})
	// .mp4 sits in several video subtypes; extension membership resolves
	// to the first, "movies".
	assert.Equal(t, []string{"media", "videos", "movies"}, got)
}

func TestDetailedHierarchyDatePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mod := time.Date(2024, time.August, 20, 0, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mod, mod))

	cfg := DefaultHierarchyConfig()
	cfg.Granularity = model.GranularityMonth
	h := NewDetailedHierarchy(cfg)

	got := h.Classify(path, model.RuleSet{model.RuleByDate})
	assert.Equal(t, []string{"2024", "Q3", "08-August"}, got)
}

func TestDetailedHierarchyRespectsMaxDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	cfg := DefaultHierarchyConfig()
	cfg.MaxDepth = 3
	h := NewDetailedHierarchy(cfg)

	got := h.Classify(path, model.RuleSet{model.RuleByType, model.RuleByDate, model.RuleByUsage})
	assert.LessOrEqual(t, len(got), 3)
}

func TestRecommendDepth(t *testing.T) {
	h := NewDetailedHierarchy(DefaultHierarchyConfig())
	assert.Equal(t, 2, h.RecommendDepth(5))
	assert.Equal(t, 3, h.RecommendDepth(50))
	assert.Equal(t, 4, h.RecommendDepth(200))
	assert.Equal(t, 5, h.RecommendDepth(1000))
}

func TestUsageBucket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	now := time.Now()
	assert.Equal(t, "recent", usageBucket(path, now))
	assert.Equal(t, "this_month", usageBucket(path, now.Add(10*24*time.Hour)))
	assert.Equal(t, "this_year", usageBucket(path, now.Add(100*24*time.Hour)))
	assert.Equal(t, "archive", usageBucket(path, now.Add(400*24*time.Hour)))
}

func TestProjectSegments(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "myapp", "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "myapp", "package.json"), []byte("{}"), 0o644))
	inProject := filepath.Join(root, "myapp", "src", "index.js")
	require.NoError(t, os.WriteFile(inProject, []byte("x"), 0o644))

	h := NewDetailedHierarchy(DefaultHierarchyConfig())
	got := h.projectSegments(inProject)
	assert.Equal(t, []string{"projects", "web", "myapp"}, got)

	loose := filepath.Join(root, "loose.js")
	require.NoError(t, os.WriteFile(loose, []byte("x"), 0o644))
	assert.Empty(t, h.projectSegments(loose))
}
