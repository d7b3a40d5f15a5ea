package modulemd

import (
	"maps"
	"slices"

	"golang.org/x/text/language"
)

// CanonicalLocale normalises a BCP 47 locale tag, e.g. "pt_br" to "pt-BR".
// Underscores are accepted as separators.
func CanonicalLocale(locale string) (string, error) {
	if locale == "" {
		return "", InvalidArgumentf(DomainModel, "locale must not be empty")
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", &Error{
			Kind:    KindInvalidArgument,
			Domain:  DomainModel,
			Message: "invalid locale " + locale,
			Err:     err,
		}
	}
	return tag.String(), nil
}

// matchLocale picks the best available locale for want, reporting false
// when nothing acceptable is available.
func matchLocale(available []string, want string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	desired, err := language.Parse(want)
	if err != nil {
		return "", false
	}
	tags := make([]language.Tag, len(available))
	for i, a := range available {
		tags[i] = language.Make(a)
	}
	_, idx, conf := language.NewMatcher(tags).Match(desired)
	if conf == language.No {
		return "", false
	}
	return available[idx], true
}

// localized holds strings keyed by canonical locale.
type localized map[string]string

func (l localized) lookup(locale string) (string, bool) {
	if v, ok := l[locale]; ok {
		return v, true
	}
	best, ok := matchLocale(slices.Sorted(maps.Keys(l)), locale)
	if !ok {
		return "", false
	}
	return l[best], true
}
