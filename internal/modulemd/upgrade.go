package modulemd

// UpgradeServiceLevel is the service level a version 1 eol is moved to.
const UpgradeServiceLevel = "rawhide"

// Upgrade returns a version 2 copy of the stream. A version 2 stream is
// returned as a plain copy.
//
// The version 1 eol becomes the end of the "rawhide" service level, and the
// flat buildrequires and requires maps become a single Dependencies entry
// with one stream per module. No entry is added when there are none.
func (s *ModuleStream) Upgrade() (*ModuleStream, error) {
	switch s.mdversion {
	case MDVersion2:
		return s.Copy(), nil
	case MDVersion1:
	default:
		return nil, InvalidArgumentf(DomainModel, "cannot upgrade modulemd version %d", s.mdversion)
	}

	out := s.Copy()
	out.mdversion = MDVersion2
	out.eol = ""
	out.buildRequires = nil
	out.requires = nil

	if s.eol != "" {
		out.serviceLevels = map[string]ServiceLevel{
			UpgradeServiceLevel: {Name: UpgradeServiceLevel, EOL: s.eol},
		}
	}

	if len(s.buildRequires) > 0 || len(s.requires) > 0 {
		deps := NewDependencies()
		for module, stream := range s.buildRequires {
			deps.AddBuildtimeStream(module, stream)
		}
		for module, stream := range s.requires {
			deps.AddRuntimeStream(module, stream)
		}
		out.dependencies = []*Dependencies{deps}
	}
	return out, nil
}
