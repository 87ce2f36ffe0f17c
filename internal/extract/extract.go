// Package extract unpacks IP container archives into a project tree.
//
// Extract keeps only the entries a relocated project needs to regenerate
// the IP (configuration and coefficient files) and leaves simulation and
// synthesis products behind. ExtractAll unpacks everything except entries
// matching an exclude pattern.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"

	"github.com/Seradorr/migrations/internal/log"
	"github.com/Seradorr/migrations/internal/pathalg"
)

// DefaultMaxPathLength is the longest destination path, exclusive, that
// Vivado on Windows can still open.
const DefaultMaxPathLength = 260

// ErrUnsafeEntry marks an entry whose name would escape the destination.
var ErrUnsafeEntry = errors.New("archive entry escapes destination")

// Policy selects which archive entries are written.
type Policy struct {
	// AllowedExtensions are lower-case extensions including the dot.
	AllowedExtensions []string
	// DeniedNames are file names never written, compared case-insensitively.
	DeniedNames []string
	// ExcludedDirs drop every entry below a directory segment of this name.
	ExcludedDirs []string
	// MaxPathLength skips entries whose destination path reaches this length.
	// Zero disables the check.
	MaxPathLength int
}

// DefaultPolicy returns the policy used for IP container archives.
func DefaultPolicy() Policy {
	return Policy{
		AllowedExtensions: []string{".xci", ".coe", ".mem"},
		DeniedNames:       []string{"cc.xml"},
		ExcludedDirs:      []string{"sim", "synth", "sim_netlist"},
		MaxPathLength:     DefaultMaxPathLength,
	}
}

// Result reports the outcome of an extraction in archive order.
type Result struct {
	// Written holds the absolute paths of the files created.
	Written []string
	// Warnings holds one message per skipped entry that deserves attention.
	Warnings []string
}

// Keep reports whether policy admits the entry name. It does not look at
// the destination path length.
func (p Policy) Keep(name string) bool {
	segments := pathalg.Split(name)
	if len(segments) == 0 {
		return false
	}
	file := segments[len(segments)-1]

	for _, denied := range p.DeniedNames {
		if strings.EqualFold(file, denied) {
			return false
		}
	}
	for _, dir := range segments[:len(segments)-1] {
		if slices.ContainsFunc(p.ExcludedDirs, func(ex string) bool { return strings.EqualFold(dir, ex) }) {
			return false
		}
	}
	ext := pathalg.Ext(file)
	return slices.ContainsFunc(p.AllowedExtensions, func(a string) bool { return strings.EqualFold(ext, a) })
}

// Extract writes the entries of archivePath admitted by policy below destDir.
func Extract(archivePath, destDir string, policy Policy) (Result, error) {
	return extract(archivePath, destDir, policy.MaxPathLength, policy.Keep)
}

// ExtractAll writes every entry of archivePath below destDir, except those
// whose slash-separated name matches exclude. A nil exclude keeps everything.
func ExtractAll(archivePath, destDir string, exclude *regexp.Regexp) (Result, error) {
	keep := func(name string) bool {
		return exclude == nil || !exclude.MatchString(name)
	}
	return extract(archivePath, destDir, 0, keep)
}

func extract(archivePath, destDir string, maxPath int, keep func(string) bool) (Result, error) {
	var res Result

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return res, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if !keep(name) {
			log.Debug(log.CatExtract, "Entry filtered", "archive", archivePath, "entry", name)
			continue
		}

		target, err := destination(destDir, name)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Skipping unsafe archive entry: %s", f.Name))
			log.Warn(log.CatExtract, "Unsafe entry skipped", "archive", archivePath, "entry", f.Name)
			continue
		}
		if maxPath > 0 && utf8.RuneCountInString(target) >= maxPath {
			res.Warnings = append(res.Warnings, "Skipping file due to MAX_PATH: "+target)
			log.Warn(log.CatExtract, "Entry path too long", "path", target)
			continue
		}

		if err := writeEntry(f, target); err != nil {
			return res, err
		}
		res.Written = append(res.Written, target)
	}

	log.Debug(log.CatExtract, "Archive extracted", "archive", archivePath, "written", len(res.Written), "warnings", len(res.Warnings))
	return res, nil
}

// destination joins name below destDir and refuses anything that leaves it.
func destination(destDir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || filepath.VolumeName(name) != "" {
		return "", ErrUnsafeEntry
	}
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrUnsafeEntry
	}
	return target, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644) //nolint:gosec // G304: target is confined to destDir
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil { //nolint:gosec // G110: archives come from the user's own project
		_ = dst.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return dst.Close()
}
