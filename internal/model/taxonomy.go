package model

import (
	"sort"
	"strings"
)

// CategoryOthers is the fallback category for unknown extensions.
const CategoryOthers = "others"

// TypeTaxonomy maps a category name to the set of file extensions that
// belong to it. Extensions include the leading dot and are lowercase.
type TypeTaxonomy map[string][]string

// Category returns the category owning the given extension, or
// CategoryOthers when no category claims it. Categories are scanned in
// name order so an extension listed twice always lands in the same one.
func (t TypeTaxonomy) Category(ext string) string {
	ext = strings.ToLower(ext)
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, e := range t[name] {
			if e == ext {
				return name
			}
		}
	}
	return CategoryOthers
}

// DefaultTaxonomy returns the built-in extension-to-category mapping.
func DefaultTaxonomy() TypeTaxonomy {
	return TypeTaxonomy{
		"images": {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif",
			".svg", ".webp", ".ico", ".raw", ".heic", ".heif"},
		"documents": {".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".pages",
			".md", ".tex", ".epub", ".mobi"},
		"spreadsheets":  {".xls", ".xlsx", ".csv", ".ods", ".numbers", ".tsv"},
		"presentations": {".ppt", ".pptx", ".odp", ".key"},
		"audio": {".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a",
			".opus", ".ape", ".ac3", ".dts"},
		"videos": {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm",
			".m4v", ".3gp", ".ogv", ".ts", ".vob"},
		"archives": {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz",
			".cab", ".ace", ".arj", ".lzh"},
		"code": {".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".h",
			".php", ".rb", ".go", ".rs", ".swift", ".kt", ".jsx",
			".vue", ".sql", ".sh", ".bat", ".ps1", ".xml", ".json", ".yaml"},
		"executables": {".exe", ".msi", ".deb", ".rpm", ".dmg", ".app", ".pkg",
			".run", ".bin", ".jar"},
		"fonts":        {".ttf", ".otf", ".woff", ".woff2", ".eot"},
		CategoryOthers: {},
	}
}
