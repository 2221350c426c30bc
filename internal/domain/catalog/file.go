package catalog

import "strings"

// FileExtension returns the extension of the last path element without the dot.
// Hidden files (".env") and names without a dot have no extension.
func FileExtension(path string) string {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	dot := strings.LastIndex(base, ".")
	if dot <= 0 {
		return ""
	}
	return base[dot+1:]
}

// FileName returns the last element of a storage path
func FileName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
