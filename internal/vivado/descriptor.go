package vivado

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Seradorr/migrations/internal/fsutil"
	"github.com/Seradorr/migrations/internal/migration"
)

// DescriptorExt is the extension of Vivado project files.
const DescriptorExt = ".xpr"

// ErrNotAProject is returned when the descriptor's root element is not
// <Project>.
var ErrNotAProject = errors.New("not a Vivado project file")

// Descriptor is the part of a .xpr file the relocation cares about.
type Descriptor struct {
	// ProjectPath is the Path attribute of <Project>, where the project was
	// last saved.
	ProjectPath string
	FileSets    []FileSet
}

// FileSet is one <FileSet> of the descriptor.
type FileSet struct {
	Name string
	Type string
	// Files are the Path attributes of the set's <File> elements, decoded,
	// in document order.
	Files []string
}

// ParseDescriptor reads the file sets of a .xpr document. Elements the
// relocation does not use are skipped.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		desc    *Descriptor
		current *FileSet
		depth   int
		setAt   int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing descriptor: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case desc == nil:
				if t.Name.Local != "Project" {
					return nil, fmt.Errorf("%w: root element <%s>", ErrNotAProject, t.Name.Local)
				}
				desc = &Descriptor{ProjectPath: attr(t, "Path")}
			case t.Name.Local == "FileSet" && current == nil:
				desc.FileSets = append(desc.FileSets, FileSet{Name: attr(t, "Name"), Type: attr(t, "Type")})
				current = &desc.FileSets[len(desc.FileSets)-1]
				setAt = depth
			case t.Name.Local == "File" && current != nil && depth == setAt+1:
				if p := attr(t, "Path"); p != "" {
					current.Files = append(current.Files, p)
				}
			}
		case xml.EndElement:
			if current != nil && depth == setAt {
				current = nil
			}
			depth--
		}
	}

	if desc == nil {
		return nil, fmt.Errorf("%w: empty document", ErrNotAProject)
	}
	return desc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// FindDescriptor returns path itself unless it names a directory, in which
// case it returns the one project file below that directory.
func FindDescriptor(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}
	found, err := fsutil.FindFilesByExtension(path, DescriptorExt)
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", path, err)
	}
	switch len(found) {
	case 0:
		return "", migration.Errorf(migration.DescriptorNotFound, "%w: no %s file below %s",
			migration.ErrDescriptorNotFound, DescriptorExt, path)
	case 1:
		return found[0], nil
	default:
		return "", migration.Errorf(migration.DescriptorNotFound, "%d %s files below %s, name one: %s",
			len(found), DescriptorExt, path, strings.Join(found, ", "))
	}
}
