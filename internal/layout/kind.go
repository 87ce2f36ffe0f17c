package layout

import (
	"fmt"
	"strings"
)

// Kind classifies an artifact. It selects the target directory and whether
// the artifact is relocated as its whole containing folder.
type Kind int

const (
	KindProject             Kind = iota // the tool's own project container
	KindRTL                             // synthesizable HDL
	KindSimulation                      // simulation-only sources
	KindIP                              // IP core (.xci)
	KindIPArchive                       // container archive (.xcix)
	KindIPManifest                      // archive-manifest entry (IP XML)
	KindBlockDesign                     // block design (.bd)
	KindBlockDesignManifest             // block design XML
	KindConstraint                      // .xdc and friends
	KindCoefficient                     // .coe / .mem
	KindOutput                          // bitstreams, probe files
	KindElf                             // software images
	KindHardwareExport                  // .xsa / .hdf bundles
	KindSecondaryProject                // secondary toolchain (Vitis) projects
	KindOther
)

var kindNames = map[Kind]string{
	KindProject:             "project",
	KindRTL:                 "rtl",
	KindSimulation:          "sim",
	KindIP:                  "ip",
	KindIPArchive:           "ip-archive",
	KindIPManifest:          "ip-manifest",
	KindBlockDesign:         "bd",
	KindBlockDesignManifest: "bd-manifest",
	KindConstraint:          "const",
	KindCoefficient:         "coe",
	KindOutput:              "out",
	KindElf:                 "elf",
	KindHardwareExport:      "hw-export",
	KindSecondaryProject:    "vitis",
	KindOther:               "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of String. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindOther, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText encodes k by name and rejects values outside the enumeration.
func (k Kind) MarshalText() ([]byte, error) {
	if err := CheckKind(k); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// RepresentsFolder reports whether artifacts of this kind are relocated as
// their containing folder rather than as a single file.
func (k Kind) RepresentsFolder() bool {
	switch k {
	case KindProject, KindIP, KindBlockDesign:
		return true
	default:
		return false
	}
}
