package vivado

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Seradorr/migrations/internal/layout"
	"github.com/Seradorr/migrations/internal/pathalg"
)

// ErrUnknownFileSetType is returned for a <FileSet Type> this package does
// not know how to place.
var ErrUnknownFileSetType = errors.New("unknown file set type")

// File set types found in .xpr files.
const (
	FileSetDesign     = "DesignSrcs"
	FileSetConstrs    = "Constrs"
	FileSetSimulation = "SimulationSrcs"
	FileSetBlock      = "BlockSrcs"
	FileSetUtils      = "Utils"
)

var knownFileSetTypes = map[string]bool{
	FileSetDesign:     true,
	FileSetConstrs:    true,
	FileSetSimulation: true,
	FileSetBlock:      true,
	FileSetUtils:      true,
}

var hdlExtensions = map[string]bool{
	".v": true, ".vh": true, ".sv": true, ".svh": true, ".vhd": true, ".vhdl": true,
}

var extensionKinds = map[string]layout.Kind{
	".xci":  layout.KindIP,
	".xcix": layout.KindIPArchive,
	".bd":   layout.KindBlockDesign,
	".bxml": layout.KindBlockDesignManifest,
	".xdc":  layout.KindConstraint,
	".sdc":  layout.KindConstraint,
	".coe":  layout.KindCoefficient,
	".mem":  layout.KindCoefficient,
	".bit":  layout.KindOutput,
	".bin":  layout.KindOutput,
	".mcs":  layout.KindOutput,
	".ltx":  layout.KindOutput,
	".elf":  layout.KindElf,
	".xsa":  layout.KindHardwareExport,
	".hdf":  layout.KindHardwareExport,
	".prj":  layout.KindSecondaryProject,
	".xpfm": layout.KindSecondaryProject,
	".wcfg": layout.KindSimulation,
}

// Classify picks the artifact kind of path referenced from a file set of
// type fileSetType.
func Classify(fileSetType, path string) (layout.Kind, error) {
	if !knownFileSetTypes[fileSetType] {
		return layout.KindOther, fmt.Errorf("%w: %q", ErrUnknownFileSetType, fileSetType)
	}

	ext := pathalg.Ext(path)
	switch {
	case hdlExtensions[ext] && fileSetType == FileSetSimulation:
		return layout.KindSimulation, nil
	case hdlExtensions[ext]:
		return layout.KindRTL, nil
	case ext == ".tcl" && fileSetType == FileSetConstrs:
		return layout.KindConstraint, nil
	case strings.EqualFold(pathalg.FileName(path), "component.xml"):
		return layout.KindIPManifest, nil
	}
	if kind, ok := extensionKinds[ext]; ok {
		return kind, nil
	}
	return layout.KindOther, nil
}
