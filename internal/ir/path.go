package ir

import "strings"

// RootPath is the path of the tree root.
const RootPath = "/"

// IsAbsolute reports whether path starts at the root.
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "/")
}

// ConcatPath appends a relative path to a parent path.
// "." segments are dropped and ".." moves up one level; moving above the
// root yields the root.
func ConcatPath(parent, relative string) string {
	if relative == "" {
		return parent
	}
	if IsAbsolute(relative) {
		return CleanPath(relative)
	}
	if parent == "" {
		return CleanPath(relative)
	}
	return CleanPath(parent + "/" + relative)
}

// CleanPath normalizes slashes, "." and ".." segments.
// A relative input stays relative.
func CleanPath(path string) string {
	abs := IsAbsolute(path)
	var out []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	joined := strings.Join(out, "/")
	if abs {
		return "/" + joined
	}
	return joined
}

// ParentPath returns the parent of an absolute path. The root is its own parent.
func ParentPath(path string) string {
	if path == RootPath || path == "" {
		return RootPath
	}
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return RootPath
	}
	return path[:i]
}

// PathName returns the last segment of a path; "" for the root.
func PathName(path string) string {
	if path == RootPath {
		return ""
	}
	return path[strings.LastIndexByte(path, '/')+1:]
}

// PathDepth counts the segments of an absolute path; the root has depth 0.
func PathDepth(path string) int {
	if path == RootPath || path == "" {
		return 0
	}
	return strings.Count(path, "/")
}

// Ancestors lists the proper ancestors of path from the root downwards.
func Ancestors(path string) []string {
	if path == RootPath || path == "" {
		return nil
	}
	var out []string
	for p := ParentPath(path); ; p = ParentPath(p) {
		out = append(out, p)
		if p == RootPath {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IsDescendant reports whether path lies strictly below ancestor.
func IsDescendant(ancestor, path string) bool {
	if ancestor == RootPath {
		return path != RootPath && IsAbsolute(path)
	}
	return strings.HasPrefix(path, ancestor+"/")
}
