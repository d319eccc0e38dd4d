package rules

// typeNode is one level of the detailed taxonomy: an extension set for leaf
// levels, ordered children for branch levels. Children are ordered because
// resolution walks them first-match-wins.
type typeNode struct {
	exts     []string
	children []namedNode
}

type namedNode struct {
	name string
	node typeNode
}

func (n typeNode) containsExt(ext string) bool {
	for _, e := range n.exts {
		if e == ext {
			return true
		}
	}
	for _, child := range n.children {
		if child.node.containsExt(ext) {
			return true
		}
	}
	return false
}

func (n typeNode) hasChild(name string) bool {
	for _, child := range n.children {
		if child.name == name {
			return true
		}
	}
	return false
}

func leaf(exts ...string) typeNode { return typeNode{exts: exts} }

// detailedTaxonomy is the nested type mapping used by the hierarchical
// strategy: primary type, secondary subtype, tertiary subtype.
var detailedTaxonomy = []namedNode{
	{"images", typeNode{children: []namedNode{
		{"photos", typeNode{children: []namedNode{
			{"mobile_photos", leaf(".jpg", ".jpeg", ".png", ".heic", ".heif")},
			{"raw_photos", leaf(".cr2", ".nef", ".arw", ".dng", ".raw")},
			{"high_quality", leaf(".tiff", ".tif", ".png")},
			{"web_optimized", leaf(".webp", ".svg")},
		}}},
		{"graphics", typeNode{children: []namedNode{
			{"screenshots", leaf(".jpg", ".jpeg", ".png", ".bmp")},
			{"icons", leaf(".ico", ".icns", ".png")},
			{"logos", leaf(".svg", ".png", ".jpg", ".ai")},
			{"illustrations", leaf(".svg", ".ai", ".eps", ".pdf")},
		}}},
		{"design", typeNode{children: []namedNode{
			{"mockups", leaf(".psd", ".sketch", ".fig", ".xd")},
			{"assets", leaf(".png", ".svg", ".jpg")},
		}}},
		{"animations", leaf(".gif", ".apng", ".webp")},
		{"others", leaf(".bmp", ".tga", ".exr")},
	}}},
	{"documents", typeNode{children: []namedNode{
		{"work", typeNode{children: []namedNode{
			{"reports", leaf(".pdf", ".doc", ".docx", ".ppt", ".pptx")},
			{"presentations", leaf(".ppt", ".pptx", ".odp", ".key")},
			{"spreadsheets", leaf(".xls", ".xlsx", ".csv", ".ods", ".numbers")},
		}}},
		{"personal", typeNode{children: []namedNode{
			{"notes", leaf(".txt", ".md", ".rtf", ".odt")},
			{"lists", leaf(".txt", ".md", ".csv")},
		}}},
		{"reference", typeNode{children: []namedNode{
			{"manuals", leaf(".pdf", ".doc", ".docx")},
			{"documentation", leaf(".pdf", ".txt", ".md", ".rst")},
		}}},
		{"technical", typeNode{children: []namedNode{
			{"logs", leaf(".log", ".out", ".txt")},
			{"configs", leaf(".ini", ".conf", ".cfg", ".toml", ".yaml", ".yml")},
			{"data", leaf(".json", ".xml", ".csv", ".tsv")},
		}}},
		{"ebooks", leaf(".epub", ".mobi", ".azw", ".fb2", ".pdf")},
		{"others", leaf(".pages", ".tex")},
	}}},
	{"media", typeNode{children: []namedNode{
		{"audio", typeNode{children: []namedNode{
			{"music", typeNode{children: []namedNode{
				{"lossless", leaf(".flac", ".ape", ".wav", ".aiff")},
				{"compressed", leaf(".mp3", ".aac", ".ogg", ".wma", ".m4a")},
				{"streaming", leaf(".opus")},
			}}},
			{"podcasts", leaf(".mp3", ".aac", ".ogg")},
			{"recordings", leaf(".wav", ".m4a", ".aac")},
		}}},
		{"videos", typeNode{children: []namedNode{
			{"movies", leaf(".mkv", ".mp4", ".avi", ".mov")},
			{"tv_shows", leaf(".mkv", ".mp4", ".avi")},
			{"tutorials", leaf(".mp4", ".mkv", ".webm")},
			{"clips", leaf(".mp4", ".mov", ".webm", ".gif")},
			{"streams", leaf(".flv", ".webm", ".ts")},
		}}},
	}}},
	{"development", typeNode{children: []namedNode{
		{"source_code", typeNode{children: []namedNode{
			{"web_frontend", leaf(".html", ".css", ".js", ".jsx", ".tsx", ".vue", ".svelte")},
			{"web_backend", leaf(".php", ".py", ".rb", ".go", ".rs", ".java", ".kt")},
			{"mobile", leaf(".swift", ".m", ".dart")},
			{"desktop", leaf(".cpp", ".c", ".h", ".cs", ".vb")},
			{"scripts", leaf(".sh", ".bat", ".ps1", ".fish", ".zsh")},
			{"data", leaf(".sql", ".json", ".xml", ".yaml", ".yml", ".toml")},
		}}},
		{"resources", typeNode{children: []namedNode{
			{"documentation", leaf(".md", ".rst")},
			{"databases", leaf(".db", ".sqlite", ".sqlite3")},
		}}},
	}}},
	{"system", typeNode{children: []namedNode{
		{"executables", typeNode{children: []namedNode{
			{"installers", leaf(".msi", ".exe", ".dmg", ".pkg", ".deb", ".rpm")},
			{"portable", leaf(".app")},
		}}},
		{"archives", typeNode{children: []namedNode{
			{"compressed", leaf(".zip", ".rar", ".7z", ".tar", ".gz")},
			{"disk_images", leaf(".iso", ".img")},
			{"backups", leaf(".bak", ".backup")},
		}}},
		{"fonts", leaf(".ttf", ".otf", ".woff", ".woff2", ".eot")},
		{"drivers", leaf(".inf", ".sys", ".kext")},
	}}},
}
