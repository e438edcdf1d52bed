// Package zippath provides entry-name safety checks and separator
// normalization for ZIP archive namespaces.
package zippath

import "strings"

// IsUnsafe reports whether an archive entry name must be excluded from
// lookup and enumeration. Unsafe names are: the empty name, any name
// containing a parent-directory traversal segment, names beginning with a
// path separator, and names that appear to start with a drive letter.
func IsUnsafe(name string) bool {
	if name == "" {
		return true
	}

	// Rejects any name containing "..", even mid-segment. Expected archive
	// content never uses double dots in entry names.
	if strings.Contains(name, "..") {
		return true
	}

	if name[0] == '/' || name[0] == '\\' {
		return true
	}

	// Drive-letter prefix (e.g. "C:\...").
	if len(name) >= 2 && name[1] == ':' &&
		((name[0] >= 'A' && name[0] <= 'Z') || (name[0] >= 'a' && name[0] <= 'z')) {
		return true
	}

	return false
}

// ToForwardSlashes converts every backslash in name to a forward slash.
func ToForwardSlashes(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

// ToBackslashes converts every forward slash in name to a backslash.
func ToBackslashes(name string) string {
	return strings.ReplaceAll(name, "/", "\\")
}

// NormalizeBase prepares a base path for prefix matching: an empty base or
// the bare separator matches the whole namespace (returns ""), anything else
// gains a trailing separator.
func NormalizeBase(basePath string) string {
	if basePath == "" || basePath == "/" {
		return ""
	}
	if !strings.HasSuffix(basePath, "/") {
		return basePath + "/"
	}
	return basePath
}

// AncestorDirs returns every ancestor directory implied by the entry name,
// each ending in "/". An entry name that itself ends in "/" is a dedicated
// directory entry and is included. Order is innermost-first.
func AncestorDirs(name string) []string {
	var dirs []string
	for name != "" {
		if !strings.HasSuffix(name, "/") {
			// Trim the basename to get the parent directory path.
			idx := strings.LastIndexByte(name, '/')
			if idx < 0 {
				break
			}
			name = name[:idx+1]
		}
		dirs = append(dirs, name)
		name = strings.TrimRight(name, "/")
	}
	return dirs
}
