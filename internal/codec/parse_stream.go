package codec

import (
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

func (d *decoder) moduleStream(data *yaml.Node, version modulemd.MDVersion) (*modulemd.ModuleStream, error) {
	s, err := modulemd.NewModuleStream(version, "", "")
	if err != nil {
		return nil, d.errorf(data, "%v", err)
	}

	err = d.mapping(data, "data", func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "name":
			var name string
			name, err = d.str(v)
			s.SetModuleName(name)
		case "stream":
			var stream string
			stream, err = d.str(v)
			s.SetStreamName(stream)
		case "version":
			s.Version, err = d.uint(v)
		case "context":
			s.Context, err = d.str(v)
		case "arch":
			s.Arch, err = d.str(v)
		case "summary":
			s.Summary, err = d.str(v)
		case "description":
			s.Description, err = d.str(v)
		case "eol":
			if version != modulemd.MDVersion1 {
				return d.versioned(v, key, version)
			}
			var eol string
			if eol, err = d.str(v); err == nil {
				err = s.SetEOL(eol)
			}
		case "servicelevels":
			if version != modulemd.MDVersion2 {
				return d.versioned(v, key, version)
			}
			err = d.serviceLevels(s, v)
		case "license":
			err = d.license(s, v)
		case "xmd":
			var xmd map[string]any
			if xmd, err = d.xmd(v); err == nil {
				err = s.SetXMD(xmd)
			}
		case "dependencies":
			if version == modulemd.MDVersion1 {
				err = d.dependenciesV1(s, v)
			} else {
				err = d.dependenciesV2(s, v)
			}
		case "references":
			err = d.references(s, v)
		case "profiles":
			err = d.profiles(s, v)
		case "api":
			s.RPMAPI, err = d.rpmSet(v, "api")
		case "filter":
			s.RPMFilter, err = d.rpmSet(v, "filter")
		case "buildopts":
			s.BuildOpts, err = d.buildOpts(v)
		case "components":
			err = d.components(s, v)
		case "artifacts":
			s.RPMArtifacts, err = d.rpmSet(v, "artifacts")
		default:
			return d.unknown(v, "data", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, d.invalid(data, err)
	}
	return s, nil
}

// versioned handles a key that exists only in another metadata version.
func (d *decoder) versioned(node *yaml.Node, key string, version modulemd.MDVersion) error {
	if d.strict {
		return d.errorf(node, "key %q is not valid in version %d", key, version)
	}
	return d.unknown(node, "data", key)
}

func (d *decoder) serviceLevels(s *modulemd.ModuleStream, node *yaml.Node) error {
	return d.mapping(node, "servicelevels", func(name string, v *yaml.Node) error {
		sl := modulemd.ServiceLevel{Name: name}
		err := d.mapping(v, "servicelevel", func(key string, v *yaml.Node) error {
			if key != "eol" {
				return d.unknown(v, "servicelevel", key)
			}
			var err error
			sl.EOL, err = d.str(v)
			return err
		})
		if err != nil {
			return err
		}
		if err := s.AddServiceLevel(sl); err != nil {
			return d.errorf(v, "%v", err)
		}
		return nil
	})
}

func (d *decoder) license(s *modulemd.ModuleStream, node *yaml.Node) error {
	return d.mapping(node, "license", func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "module":
			s.ModuleLicenses, err = d.set(v, "license.module")
		case "content":
			s.ContentLicenses, err = d.set(v, "license.content")
		default:
			return d.unknown(v, "license", key)
		}
		return err
	})
}

func (d *decoder) dependenciesV1(s *modulemd.ModuleStream, node *yaml.Node) error {
	return d.mapping(node, "dependencies", func(key string, v *yaml.Node) error {
		var add func(module, stream string) error
		switch key {
		case "buildrequires":
			add = s.AddBuildRequires
		case "requires":
			add = s.AddRequires
		default:
			return d.unknown(v, "dependencies", key)
		}
		return d.mapping(v, "dependencies."+key, func(module string, v *yaml.Node) error {
			stream, err := d.str(v)
			if err != nil {
				return err
			}
			return add(module, stream)
		})
	})
}

func (d *decoder) dependenciesV2(s *modulemd.ModuleStream, node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return d.errorf(node, "dependencies must be a list")
	}
	for _, item := range node.Content {
		deps := modulemd.NewDependencies()
		err := d.mapping(deref(item), "dependencies", func(key string, v *yaml.Node) error {
			var add func(module string, streams ...string)
			switch key {
			case "buildrequires":
				add = deps.AddBuildtimeStream
			case "requires":
				add = deps.AddRuntimeStream
			default:
				return d.unknown(v, "dependencies", key)
			}
			return d.mapping(v, "dependencies."+key, func(module string, v *yaml.Node) error {
				streams, err := d.set(v, "dependencies."+key+"."+module)
				if err != nil {
					return err
				}
				add(module, streams.Values()...)
				return nil
			})
		})
		if err != nil {
			return err
		}
		if err := s.AddDependencies(deps); err != nil {
			return d.errorf(item, "%v", err)
		}
	}
	return nil
}

func (d *decoder) references(s *modulemd.ModuleStream, node *yaml.Node) error {
	return d.mapping(node, "references", func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "community":
			s.Community, err = d.str(v)
		case "documentation":
			s.Documentation, err = d.str(v)
		case "tracker":
			s.Tracker, err = d.str(v)
		default:
			return d.unknown(v, "references", key)
		}
		return err
	})
}

func (d *decoder) profiles(s *modulemd.ModuleStream, node *yaml.Node) error {
	return d.mapping(node, "profiles", func(name string, v *yaml.Node) error {
		p := modulemd.NewProfile(name)
		err := d.mapping(v, "profile", func(key string, v *yaml.Node) error {
			var err error
			switch key {
			case "description":
				p.Description, err = d.str(v)
			case "rpms":
				p.RPMs, err = d.set(v, "profile.rpms")
			default:
				return d.unknown(v, "profile", key)
			}
			return err
		})
		if err != nil {
			return err
		}
		if err := s.AddProfile(p); err != nil {
			return d.errorf(v, "%v", err)
		}
		return nil
	})
}

func (d *decoder) buildOpts(node *yaml.Node) (*modulemd.BuildOpts, error) {
	opts := &modulemd.BuildOpts{RPMWhitelist: modulemd.NewSet()}
	err := d.mapping(node, "buildopts", func(key string, v *yaml.Node) error {
		if key != "rpms" {
			return d.unknown(v, "buildopts", key)
		}
		return d.mapping(v, "buildopts.rpms", func(key string, v *yaml.Node) error {
			var err error
			switch key {
			case "macros":
				opts.RPMMacros, err = d.str(v)
			case "whitelist":
				opts.RPMWhitelist, err = d.set(v, "buildopts.rpms.whitelist")
			default:
				return d.unknown(v, "buildopts.rpms", key)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if opts.IsEmpty() {
		return nil, nil
	}
	return opts, nil
}

func (d *decoder) components(s *modulemd.ModuleStream, node *yaml.Node) error {
	return d.mapping(node, "components", func(key string, v *yaml.Node) error {
		kind, err := modulemd.ParseComponentKind(key)
		if err != nil || key == "rpm" || key == "module" {
			return d.unknown(v, "components", key)
		}
		return d.mapping(v, "components."+key, func(name string, v *yaml.Node) error {
			var c modulemd.Component
			switch kind {
			case modulemd.ComponentRPM:
				c, err = d.rpmComponent(name, v)
			case modulemd.ComponentModule:
				c, err = d.moduleComponent(name, v)
			}
			if err != nil {
				return err
			}
			if err := s.AddComponent(c); err != nil {
				return d.errorf(v, "%v", err)
			}
			return nil
		})
	})
}

// componentField handles the keys shared by both component kinds.
func (d *decoder) componentField(c modulemd.Component, key string, v *yaml.Node) (bool, error) {
	switch key {
	case "rationale":
		r, err := d.str(v)
		c.SetRationale(r)
		return true, err
	case "buildorder":
		o, err := d.int(v)
		c.SetBuildorder(o)
		return true, err
	}
	return false, nil
}

func (d *decoder) rpmComponent(name string, node *yaml.Node) (*modulemd.RPMComponent, error) {
	c := modulemd.NewRPMComponent(name)
	err := d.mapping(node, "components.rpms."+name, func(key string, v *yaml.Node) error {
		if ok, err := d.componentField(c, key, v); ok {
			return err
		}
		var err error
		switch key {
		case "repository":
			c.Repository, err = d.str(v)
		case "cache":
			c.Cache, err = d.str(v)
		case "ref":
			c.Ref, err = d.str(v)
		case "arches":
			c.Arches, err = d.set(v, "arches")
		case "multilib":
			c.Multilib, err = d.set(v, "multilib")
		default:
			return d.unknown(v, "components.rpms."+name, key)
		}
		return err
	})
	return c, err
}

func (d *decoder) moduleComponent(name string, node *yaml.Node) (*modulemd.ModuleComponent, error) {
	c := modulemd.NewModuleComponent(name)
	err := d.mapping(node, "components.modules."+name, func(key string, v *yaml.Node) error {
		if ok, err := d.componentField(c, key, v); ok {
			return err
		}
		var err error
		switch key {
		case "repository":
			c.Repository, err = d.str(v)
		case "ref":
			c.Ref, err = d.str(v)
		default:
			return d.unknown(v, "components.modules."+name, key)
		}
		return err
	})
	return c, err
}
