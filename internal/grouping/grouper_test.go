package grouping

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/model"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func kindOf(t *testing.T, report *model.GroupingReport, member string) model.GroupKind {
	t.Helper()
	for _, g := range report.Groups {
		for _, m := range g.Members {
			if m == member {
				return g.Kind
			}
		}
	}
	t.Fatalf("file %s not present in any group", member)
	return ""
}

func TestAnalyzeProjectIndicator(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"myapp/package.json",
		"myapp/index.js",
		"myapp/notes.txt",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, model.GroupProject, kindOf(t, report, filepath.Join(root, "myapp", "notes.txt")))
	assert.Equal(t, 3, report.TotalFiles)
	assert.Equal(t, 1, report.GroupCount())
}

func TestAnalyzeProjectDensity(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/main.py",
		"src/util.py",
		"src/settings.yaml",
		"src/readme.txt",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, model.GroupProject, kindOf(t, report, filepath.Join(root, "src", "readme.txt")))
}

func TestAnalyzeProgramGroup(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"tool.exe",
		"helper.dll",
		"tool.ini",
		"vacation.jpg",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, model.GroupProgram, kindOf(t, report, filepath.Join(root, "helper.dll")))
	assert.Equal(t, model.GroupProgram, kindOf(t, report, filepath.Join(root, "tool.ini")))
	assert.Equal(t, model.GroupIndividual, kindOf(t, report, filepath.Join(root, "vacation.jpg")))
}

func TestAnalyzeWebAndMediaGroups(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"page.html",
		"page.css",
		"page_banner.png",
		"movie.mkv",
		"movie.srt",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, model.GroupWeb, kindOf(t, report, filepath.Join(root, "page_banner.png")))
	assert.Equal(t, model.GroupMedia, kindOf(t, report, filepath.Join(root, "movie.srt")))
}

func TestAnalyzeSameStem(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"Report.pdf",
		"report.docx",
		"lonely.txt",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, model.GroupSameStem, kindOf(t, report, filepath.Join(root, "Report.pdf")))
	assert.Equal(t, model.GroupSameStem, kindOf(t, report, filepath.Join(root, "report.docx")))
	assert.Equal(t, model.GroupIndividual, kindOf(t, report, filepath.Join(root, "lonely.txt")))
}

func TestAnalyzePartition(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"proj/go.mod",
		"proj/main.go",
		"app.exe",
		"app.dll",
		"site.html",
		"site.css",
		"clip.mp4",
		"clip.srt",
		"dup.txt",
		"dup.md",
		"solo.dat",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)

	seen := make(map[string]int)
	total := 0
	for _, g := range report.Groups {
		for _, m := range g.Members {
			seen[m]++
			total++
		}
	}
	assert.Equal(t, report.TotalFiles, total)
	for path, count := range seen {
		assert.Equalf(t, 1, count, "file %s claimed by %d groups", path, count)
	}
}

func TestAnalyzeSkipMarker(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"keep.txt",
		"skipped/inner.txt",
		"skipped/.noclassify",
	)

	report, err := New(DefaultConfig()).Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalFiles)
	assert.Equal(t, model.GroupIndividual, kindOf(t, report, filepath.Join(root, "keep.txt")))
}

func TestMainFilePriority(t *testing.T) {
	tests := []struct {
		name    string
		members []string
		want    string
	}{
		{"executable wins", []string{"a.dll", "run.exe", "run.ini"}, "run.exe"},
		{"html over assets", []string{"style.css", "index.html"}, "index.html"},
		{"video over subtitles", []string{"film.srt", "film.mkv"}, "film.mkv"},
		{"fallback first", []string{"b.dat", "a.bin"}, "b.dat"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MainFile(tt.members))
		})
	}
}

func TestCollectFilesSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "only.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	files, err := CollectFiles(path, ".noclassify")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}
