package rules

import (
	"path/filepath"
	"regexp"
	"strings"
)

// patternCategory pairs a category label with the filename regexes that
// identify it. Order matters: the first matching category wins.
type patternCategory struct {
	name     string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile("^"+e))
	}
	return out
}

// filenamePatterns recognizes well-known filename shapes: screenshots,
// camera rolls, episode numbering and the like.
var filenamePatterns = []patternCategory{
	{"screenshots", compileAll(`screenshot.*`, `screen.*shot.*`, `capture.*`, `snap.*\d+`, `snipaste.*`)},
	{"mobile_photos", compileAll(`img_\d+`, `photo_\d+`, `dsc\d+`, `p\d{8}_\d+`, `wp_\d+`, `mmexport\d+`, `wechat.*`)},
	{"logos", compileAll(`.*logo.*`, `.*brand.*`, `.*icon.*`, `favicon.*`)},
	{"reports", compileAll(`.*report.*`, `.*summary.*`)},
	{"notes", compileAll(`.*note.*`, `memo.*`)},
	{"manuals", compileAll(`.*manual.*`, `.*guide.*`, `.*handbook.*`)},
	{"tutorials", compileAll(`.*tutorial.*`, `how.*to.*`)},
	{"tv_shows", compileAll(`.*s\d+e\d+.*`, `.*ep\d+.*`, `.*episode.*`)},
	{"movies", compileAll(`.*\d{4}.*`, `.*bluray.*`, `.*1080p.*`, `.*4k.*`)},
	{"backups", compileAll(`.*backup.*`, `.*bak.*`, `.*copy.*`, `.*\(\d+\).*`)},
	{"temp_files", compileAll(`~.*`, `.*\.tmp$`, `.*\.temp$`, `temp.*`)},
}

// matchFilenamePattern returns the pattern category for a filename, or ""
// when none applies.
func matchFilenamePattern(path string) string {
	name := strings.ToLower(filepath.Base(path))
	for _, pc := range filenamePatterns {
		for _, re := range pc.patterns {
			if re.MatchString(name) {
				return pc.name
			}
		}
	}
	return ""
}
