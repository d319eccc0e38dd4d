package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filesift/filesift/internal/model"
)

func resolve(t *testing.T, r *Resolver, path string) []string {
	t.Helper()
	segments, err := r.TargetFor(context.Background(), path)
	require.NoError(t, err)
	return segments
}

func TestTargetForByType(t *testing.T) {
	r := NewResolver(Options{Rules: model.RuleSet{model.RuleByType}})

	tests := []struct {
		path string
		want string
	}{
		{"vacation.JPG", "images"},
		{"report.pdf", "documents"},
		{"song.mp3", "audio"},
		{"movie.mkv", "videos"},
		{"bundle.tar.gz", "archives"},
		{"tool.exe", "executables"},
		{"mystery.xyzzy", "others"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, resolve(t, r, tt.path))
		})
	}
}

func TestTargetForIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	r := NewResolver(Options{Rules: model.RuleSet{model.RuleByType, model.RuleByDate, model.RuleBySize}})
	first := resolve(t, r, path)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, resolve(t, r, path))
	}
}

func TestTargetForCustomRuleWins(t *testing.T) {
	r := NewResolver(Options{
		Rules: model.RuleSet{model.RuleByCustom, model.RuleByType},
		CustomRules: []model.CustomRule{
			{Name: "backups", Pattern: "*.bak", TargetFolder: "backups", Enabled: true},
			{Name: "disabled", Pattern: "*.pdf", TargetFolder: "nope", Enabled: false},
		},
	})

	// The .bak extension would otherwise classify by type; the custom rule
	// takes priority.
	assert.Equal(t, []string{"backups"}, resolve(t, r, "database.BAK"))
	// Disabled rules never match.
	assert.Equal(t, []string{"documents"}, resolve(t, r, "report.pdf"))
	// Non-matching files fall through to the remaining rules.
	assert.Equal(t, []string{"images"}, resolve(t, r, "photo.png"))
}

func TestTargetForCustomRuleNestedTarget(t *testing.T) {
	r := NewResolver(Options{
		Rules: model.RuleSet{model.RuleByCustom},
		CustomRules: []model.CustomRule{
			{Name: "invoices", Pattern: "invoice_*.pdf", TargetFolder: "finance/invoices", Enabled: true},
		},
	})
	assert.Equal(t, []string{"finance", "invoices"}, resolve(t, r, "invoice_2024.pdf"))
	assert.Equal(t, []string{"uncategorized"}, resolve(t, r, "report.pdf"))
}

func TestTargetForDateGranularities(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mod := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mod, mod))

	tests := []struct {
		granularity model.DateGranularity
		want        string
	}{
		{model.GranularityYear, "2024"},
		{model.GranularityQuarter, "2024-Q2"},
		{model.GranularityMonth, "2024-05"},
		{model.GranularityWeek, "2024-W20"},
	}
	for _, tt := range tests {
		t.Run(string(tt.granularity), func(t *testing.T) {
			r := NewResolver(Options{
				Rules:       model.RuleSet{model.RuleByDate},
				Granularity: tt.granularity,
			})
			assert.Equal(t, []string{tt.want}, resolve(t, r, path))
		})
	}
}

func TestTargetForSizeBuckets(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.bin")
	require.NoError(t, os.WriteFile(small, make([]byte, 100), 0o644))
	medium := filepath.Join(dir, "medium.bin")
	require.NoError(t, os.WriteFile(medium, make([]byte, 2<<20), 0o644))

	r := NewResolver(Options{Rules: model.RuleSet{model.RuleBySize}})
	assert.Equal(t, []string{"small"}, resolve(t, r, small))
	assert.Equal(t, []string{"medium"}, resolve(t, r, medium))
}

func TestTargetForMissingFileMetadata(t *testing.T) {
	r := NewResolver(Options{Rules: model.RuleSet{model.RuleByDate, model.RuleBySize}})
	assert.Equal(t, []string{"unknown-date", "unknown-size"}, resolve(t, r, "/nowhere/ghost.txt"))
}

func TestTargetForCombinedRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))
	mod := time.Date(2023, time.January, 3, 0, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mod, mod))

	r := NewResolver(Options{Rules: model.RuleSet{model.RuleByType, model.RuleByDate}})
	assert.Equal(t, []string{"images", "2023-01"}, resolve(t, r, path))
}

func TestTargetForCancelledContext(t *testing.T) {
	r := NewResolver(Options{Rules: model.RuleSet{model.RuleByType}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.TargetFor(ctx, "report.pdf")
	assert.Error(t, err)
}

func TestCompileWildcard(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		match   bool
	}{
		{"*.bak", "db.bak", true},
		{"*.bak", "db.backup", false},
		{"IMG_????.jpg", "img_1234.jpg", true},
		{"IMG_????.jpg", "img_12345.jpg", false},
		{"report*", "report_final_v2.docx", true},
	}
	for _, tt := range tests {
		re, err := compileWildcard(tt.pattern)
		require.NoError(t, err)
		assert.Equal(t, tt.match, re.MatchString(tt.name), "%s vs %s", tt.pattern, tt.name)
	}
}

func TestMatchFilenamePattern(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Screenshot 2024-01-05.png", "screenshots"},
		{"IMG_2041.jpg", "mobile_photos"},
		{"quarterly_report_q3.pdf", "reports"},
		{"The.Show.S02E05.mkv", "tv_shows"},
		{"random_file.dat", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, matchFilenamePattern(tt.path))
		})
	}
}
