package storage

import "strings"

// ValidFilename rejects anything that could escape the download
// directory when joined to it.
func ValidFilename(name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return true
}
