package models

import (
	"fmt"
	"io/ioutil"
	"math/rand"

	"gopkg.in/yaml.v3"
)

// ObjectItem is one everyday object for the alternate-uses task.
type ObjectItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

// WordSet is one remote-associates triad with its expected solution.
type WordSet struct {
	Words  []string `yaml:"words,flow"`
	Answer string   `yaml:"answer"`
}

// WordListPrompt describes the divergent-association word list task.
type WordListPrompt struct {
	Instructions string `yaml:"instructions"`
	WordCount    int    `yaml:"word_count"`
}

// Catalog holds all task stimuli, loaded from YAML at startup.
type Catalog struct {
	AlternateUses        []ObjectItem   `yaml:"alternate_uses"`
	RemoteAssociates     []WordSet      `yaml:"remote_associates"`
	DivergentAssociation WordListPrompt `yaml:"divergent_association"`
}

// LoadCatalog reads and parses the tasks.yaml file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task catalog YAML: %w", err)
	}

	return &catalog, nil
}

// PickObject returns a random alternate-uses object.
func (c *Catalog) PickObject() (ObjectItem, bool) {
	if len(c.AlternateUses) == 0 {
		return ObjectItem{}, false
	}
	return c.AlternateUses[rand.Intn(len(c.AlternateUses))], true
}

// PickWordSets returns n random distinct remote-associates triads, fewer
// when the catalog is smaller than n.
func (c *Catalog) PickWordSets(n int) []WordSet {
	sets := append([]WordSet(nil), c.RemoteAssociates...)
	rand.Shuffle(len(sets), func(i, j int) {
		sets[i], sets[j] = sets[j], sets[i]
	})
	if n > len(sets) {
		n = len(sets)
	}
	return sets[:n]
}
