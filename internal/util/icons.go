package util

import "strings"

// Icon returns a glyph hinting at what a tree row contains, so a user
// scanning for space hogs can spot the usual suspects (a fat node_modules,
// a stale build output, an archive) without reading every name.
func Icon(name string, isDir bool) string {
	if isDir {
		return DirIcon(name)
	}
	return FileIcon(name)
}

// DirIcon flags directory names that are disproportionately likely to be
// the disk hogs a user came here to find; anything else gets a plain
// folder glyph.
func DirIcon(name string) string {
	lower := strings.ToLower(name)
	if icon, ok := dirIcons[lower]; ok {
		return icon
	}
	return "📁"
}

// FileIcon flags a handful of extensions that tend to account for large,
// easily-deleted files (archives, disk images, media); everything else
// gets a plain file glyph rather than a per-language badge, since source
// file type carries no signal about disk usage.
func FileIcon(name string) string {
	ext := strings.ToLower(getExt(name))
	if icon, ok := extIcons[ext]; ok {
		return icon
	}
	return "📄"
}

func getExt(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}

var dirIcons = map[string]string{
	".git":         "🔀",
	"node_modules": "📦",
	"vendor":       "📦",
	"dist":         "📤",
	"build":        "🔨",
	"target":       "🎯",
	"cache":        "💾",
	".cache":       "💾",
	"tmp":          "🕐",
}

var extIcons = map[string]string{
	// Archives: usually the single largest file in a directory.
	".zip": "📦",
	".tar": "📦",
	".gz":  "📦",
	".rar": "📦",
	".7z":  "📦",
	".iso": "💿",
	".dmg": "💿",

	// Media: large binary files, often forgotten downloads.
	".mp4":  "🎬",
	".mkv":  "🎬",
	".mov":  "🎬",
	".avi":  "🎬",
	".mp3":  "🎵",
	".flac": "🎵",
	".wav":  "🎵",

	// Noisy but rarely large; still worth flagging as safe-to-clear.
	".log": "📜",
	".db":  "🗄️",
}
