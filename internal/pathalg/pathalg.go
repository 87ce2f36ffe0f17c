// Package pathalg normalizes, compares and translates between absolute and
// relative path notations. Descriptor files mix '/' and '\' freely, so every
// function here accepts both separators.
package pathalg

import (
	"path/filepath"
	"strings"
)

// Invalid is returned by Traverse when a ".." step ascends above a root.
const Invalid = "%invalid%"

func isSep(r rune) bool { return r == '/' || r == '\\' }

// Split breaks p into its segments on either separator. Empty segments,
// including the one before a leading separator, are dropped.
func Split(p string) []string {
	if p == "" {
		return nil
	}
	return strings.FieldsFunc(p, isSep)
}

// Normalize case-folds and unifies separators. The result is only meant for
// comparison; never write it anywhere.
func Normalize(p string) string {
	if p == "" {
		return p
	}
	p = strings.ReplaceAll(p, "/", `\`)
	return strings.TrimRight(strings.ToLower(p), `\`)
}

// Equal compares two paths under Normalize.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsSubPath reports whether child lies below parent or is parent itself.
func IsSubPath(child, parent string) bool {
	if child == "" || parent == "" {
		return false
	}
	c, p := Normalize(child), Normalize(parent)
	return c == p || strings.HasPrefix(c, p+`\`)
}

// Below returns child's steps beneath parent, joined with '/' and with the
// child's casing kept. Segments compare as IsSubPath does; ok is false when
// child is not below parent. A child equal to parent yields "".
func Below(child, parent string) (rel string, ok bool) {
	if !IsSubPath(child, parent) {
		return "", false
	}
	c, p := Split(child), Split(parent)
	if len(c) < len(p) {
		return "", false
	}
	for i := range p {
		if strings.ToLower(c[i]) != strings.ToLower(p[i]) {
			return "", false
		}
	}
	return strings.Join(c[len(p):], "/"), true
}

// Traverse applies the steps of rel to base. ".." moves to the real parent
// directory; other steps are appended with their casing preserved. Empty and
// "." steps are no-ops. Ascending above a root yields (Invalid, false).
func Traverse(base, rel string) (string, bool) {
	res := base
	for _, step := range Split(rel) {
		switch step {
		case ".":
		case "..":
			parent := filepath.Dir(res)
			if parent == res {
				return Invalid, false
			}
			res = parent
		default:
			res = filepath.Join(res, step)
		}
	}
	return res, true
}

// Relativize expresses path relative to base: the longest common prefix of
// segments is dropped, each remaining base segment becomes "..", and the
// remaining path segments follow. Segments are compared exactly.
//
// Relativize inverts Traverse only for well-formed inputs whose steps never
// cross a root and never re-enter a directory they just left ("../b" from
// inside b). That is a limitation of segment-wise comparison, not a bug.
func Relativize(path, base string) string {
	p, b := Split(path), Split(base)
	i := 0
	for i < len(p) && i < len(b) && p[i] == b[i] {
		i++
	}
	steps := make([]string, 0, len(b)-i+len(p)-i)
	for range b[i:] {
		steps = append(steps, "..")
	}
	steps = append(steps, p[i:]...)
	return strings.Join(steps, "/")
}

// JoinSlash joins tool-reference parts with '/', dropping empty parts and
// stray separators so the result never has doubled or dangling separators.
func JoinSlash(parts ...string) string {
	var b strings.Builder
	for i, part := range parts {
		part = strings.ReplaceAll(part, `\`, "/")
		if i == 0 || b.Len() == 0 {
			part = strings.TrimRight(part, "/")
		} else {
			part = strings.Trim(part, "/")
		}
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(part)
	}
	return b.String()
}

// FileName returns the last segment of p, extension included.
func FileName(p string) string {
	if i := strings.LastIndexFunc(p, isSep); i >= 0 {
		return p[i+1:]
	}
	return p
}

// FileNameNoExt returns FileName without its last extension.
func FileNameNoExt(p string) string {
	name := FileName(p)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Ext returns the lower-cased extension of p including the dot.
func Ext(p string) string {
	name := FileName(p)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i:])
	}
	return ""
}
