package skills

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type vocabularyFile struct {
	Terms []string `yaml:"terms"`
}

// LoadVocabulary reads a vocabulary from a YAML or JSON file.
// The file holds either a bare list of terms or a mapping with a "terms" key.
// Entries are trimmed and lower-cased; empty entries are skipped.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}

	terms, err := parseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("parsing vocabulary file %q: %w", path, err)
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("vocabulary file %q has no terms", path)
	}

	return NewVocabulary(terms...), nil
}

func parseVocabulary(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var raw []string
	if node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&raw); err != nil {
			return nil, err
		}
	} else {
		var file vocabularyFile
		if err := node.Decode(&file); err != nil {
			return nil, err
		}
		raw = file.Terms
	}

	terms := make([]string, 0, len(raw))
	for _, term := range raw {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms, nil
}
