package utils

import (
	"crypto/md5"
	"path/filepath"
	"strings"
)

// ComputeChecksum takes a byte slice and returns the raw MD5 checksum as a byte slice
func ComputeChecksum(content []byte) []byte {
	hash := md5.New()
	hash.Write(content)
	return hash.Sum(nil)
}

// Key2NotePath maps a citation key to the markdown note path it refers
// to under base. Dots in the key become path separators, so
// "doe2020.notes" resolves to base/doe2020/notes.md.
func Key2NotePath(key string, base string) string {
	key = strings.TrimPrefix(key, "@")
	key = strings.ReplaceAll(key, ".", "/")
	return filepath.Join(base, key+".md")
}

// Path2Key inverts Key2NotePath: a markdown file under base maps back
// to its citation key. Paths outside base or without the .md extension
// yield an empty key.
func Path2Key(path string, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	rel, ok := strings.CutSuffix(rel, ".md")
	if !ok {
		return ""
	}
	return strings.ReplaceAll(rel, string(filepath.Separator), ".")
}
