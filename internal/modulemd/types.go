package modulemd

import "fmt"

// Doctype identifies the kind of a YAML document by its top-level
// "document" key.
type Doctype int

const (
	DoctypeModule Doctype = iota + 1
	DoctypeDefaults
	DoctypeTranslations
)

// Document type tags as they appear in YAML.
const (
	DocumentModule       = "modulemd"
	DocumentDefaults     = "modulemd-defaults"
	DocumentTranslations = "modulemd-translations"
)

func (d Doctype) String() string {
	switch d {
	case DoctypeModule:
		return DocumentModule
	case DoctypeDefaults:
		return DocumentDefaults
	case DoctypeTranslations:
		return DocumentTranslations
	default:
		return fmt.Sprintf("doctype(%d)", int(d))
	}
}

// ParseDoctype maps a "document" tag to its Doctype.
func ParseDoctype(s string) (Doctype, error) {
	switch s {
	case DocumentModule:
		return DoctypeModule, nil
	case DocumentDefaults:
		return DoctypeDefaults, nil
	case DocumentTranslations:
		return DoctypeTranslations, nil
	default:
		return 0, InvalidArgumentf(DomainModel, "unknown document type %q", s)
	}
}

// SupportedVersions lists the document versions accepted per Doctype.
var SupportedVersions = map[Doctype][]uint64{
	DoctypeModule:       {1, 2},
	DoctypeDefaults:     {1},
	DoctypeTranslations: {1},
}

// Supports reports whether version is a known version of d.
func (d Doctype) Supports(version uint64) bool {
	for _, v := range SupportedVersions[d] {
		if v == version {
			return true
		}
	}
	return false
}

// MDVersion is the metadata format version of a module stream.
type MDVersion uint64

const (
	MDVersion1 MDVersion = 1
	MDVersion2 MDVersion = 2

	// MDVersionLatest is the version new streams should use.
	MDVersionLatest = MDVersion2
)

// ParseMDVersion validates a numeric stream format version.
func ParseMDVersion(v uint64) (MDVersion, error) {
	switch MDVersion(v) {
	case MDVersion1, MDVersion2:
		return MDVersion(v), nil
	default:
		return 0, InvalidArgumentf(DomainModel, "unsupported modulemd version %d", v)
	}
}

// Document is implemented by every top-level document: *ModuleStream,
// *Defaults and *Translation.
type Document interface {
	DocumentType() Doctype
	// DocumentVersion is the value of the "version" key when emitted.
	DocumentVersion() uint64
	// ModuleName is the module the document belongs to.
	ModuleName() string
	Validate() error

	isDocument()
}
