// Package locales resolves the set of interface languages the application
// accepts for the profile language preference. The set ships with a built-in
// default and can be overridden by a YAML file.
package locales

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Default is the built-in locale set used when no file is configured.
var Default = []string{"en", "ar", "zgh"}

var ErrInvalidLocale = errors.New("locales: invalid locale tag")

type localesFile struct {
	Locales []string `yaml:"locales"`
}

// Load reads the locale set from a YAML file of the form:
//
//	locales: [en, ar, zgh]
//
// An empty path returns the default set. Every entry must parse as a BCP 47
// language tag.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("locales: read %s: %w", path, err)
	}

	var f localesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("locales: parse %s: %w", path, err)
	}
	if len(f.Locales) == 0 {
		return Default, nil
	}

	for _, tag := range f.Locales {
		if _, err := language.Parse(tag); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLocale, tag)
		}
	}
	return f.Locales, nil
}
