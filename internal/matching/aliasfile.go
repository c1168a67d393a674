package matching

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// aliasFile is the on-disk shape of extra skill aliases:
//
//	aliases:
//	  golang: [go lang, go-lang]
//	  terraform: [tf cloud]
type aliasFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// ParseAliases decodes an alias document. Unknown top-level keys are rejected.
func ParseAliases(data []byte) (map[string][]string, error) {
	var doc aliasFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("invalid alias file: %w", err)
	}
	if doc.Aliases == nil {
		doc.Aliases = map[string][]string{}
	}
	return doc.Aliases, nil
}

// LoadSkillResolver builds a resolver from the built-in table plus the aliases
// in path. An empty path yields the default resolver.
func LoadSkillResolver(path string) (*SkillResolver, error) {
	if path == "" {
		return defaultResolver, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}
	extra, err := ParseAliases(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewSkillResolver(extra), nil
}
