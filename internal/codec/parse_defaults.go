package codec

import (
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

func (d *decoder) defaults(data *yaml.Node) (*modulemd.Defaults, error) {
	out := modulemd.NewDefaults("")
	err := d.mapping(data, "data", func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "module":
			var name string
			name, err = d.str(v)
			out.SetModuleName(name)
		case "modified":
			out.Modified, err = d.uint(v)
		case "stream":
			out.DefaultStream, err = d.str(v)
		case "profiles":
			err = d.profileDefaults(v, "profiles", out.SetProfilesForStream)
		case "intents":
			err = d.intents(out, v)
		default:
			return d.unknown(v, "data", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, d.invalid(data, err)
	}
	return out, nil
}

func (d *decoder) profileDefaults(node *yaml.Node, section string, set func(stream string, profiles ...string)) error {
	return d.mapping(node, section, func(stream string, v *yaml.Node) error {
		profiles, err := d.set(v, section+"."+stream)
		if err != nil {
			return err
		}
		set(stream, profiles.Values()...)
		return nil
	})
}

func (d *decoder) intents(out *modulemd.Defaults, node *yaml.Node) error {
	return d.mapping(node, "intents", func(name string, v *yaml.Node) error {
		intent := modulemd.NewIntent(name)
		err := d.mapping(v, "intents."+name, func(key string, v *yaml.Node) error {
			var err error
			switch key {
			case "stream":
				intent.DefaultStream, err = d.str(v)
			case "profiles":
				err = d.profileDefaults(v, "intents."+name+".profiles", intent.SetProfilesForStream)
			default:
				return d.unknown(v, "intents."+name, key)
			}
			return err
		})
		if err != nil {
			return err
		}
		if err := out.AddIntent(intent); err != nil {
			return d.errorf(v, "%v", err)
		}
		return nil
	})
}
