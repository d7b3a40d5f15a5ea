package codec

import (
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

func (d *decoder) translation(data *yaml.Node) (*modulemd.Translation, error) {
	out := modulemd.NewTranslation("", "", 0)
	err := d.mapping(data, "data", func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "module":
			var name string
			name, err = d.str(v)
			out.SetModuleName(name)
		case "stream":
			var stream string
			stream, err = d.str(v)
			out.SetStreamName(stream)
		case "modified":
			out.Modified, err = d.uint(v)
		case "translations":
			err = d.translationEntries(out, v)
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

func (d *decoder) translationEntries(out *modulemd.Translation, node *yaml.Node) error {
	return d.mapping(node, "translations", func(locale string, v *yaml.Node) error {
		entry, err := modulemd.NewTranslationEntry(locale)
		if err != nil {
			return d.errorf(v, "invalid locale %q", locale)
		}
		err = d.mapping(v, "translations."+locale, func(key string, v *yaml.Node) error {
			var err error
			switch key {
			case "summary":
				entry.Summary, err = d.str(v)
			case "description":
				entry.Description, err = d.str(v)
			case "profiles":
				err = d.mapping(v, "translations."+locale+".profiles", func(profile string, v *yaml.Node) error {
					desc, err := d.str(v)
					entry.SetProfileDescription(profile, desc)
					return err
				})
			default:
				return d.unknown(v, "translations."+locale, key)
			}
			return err
		})
		if err != nil {
			return err
		}
		return out.SetEntry(entry)
	})
}
