package planner

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Template struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Duration    int    `yaml:"duration"`
}

type Subject struct {
	Name      string     `yaml:"name"`
	Bootstrap bool       `yaml:"bootstrap"`
	Aliases   []string   `yaml:"aliases"`
	Templates []Template `yaml:"templates"`
}

// Catalog is the ordered set of subjects tasks are generated from.
type Catalog struct {
	Subjects []Subject `yaml:"subjects"`

	index map[string]int
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("embedded catalog is broken: " + err.Error())
	}
	return c
}

// LoadCatalog reads a catalog file, or returns the default one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("reading catalog error: " + err.Error())
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.New("parsing catalog error: " + err.Error())
	}
	if len(c.Subjects) == 0 {
		return nil, errors.New("catalog has no subjects")
	}
	c.index = make(map[string]int)
	for i, s := range c.Subjects {
		if s.Name == "" {
			return nil, errors.New("catalog subject without name")
		}
		if len(s.Templates) == 0 {
			return nil, errors.New("subject " + s.Name + " has no templates")
		}
		for _, t := range s.Templates {
			if t.Duration <= 0 {
				return nil, errors.New("subject " + s.Name + " has a template without duration")
			}
		}
		for _, key := range append([]string{s.Name}, s.Aliases...) {
			c.index[normalize(key)] = i
		}
	}
	return &c, nil
}

// Lookup resolves a subject by name or alias, case-insensitively.
func (c *Catalog) Lookup(name string) (*Subject, bool) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return nil, false
	}
	return &c.Subjects[i], true
}

// BootstrapSubjects are the subjects used when there is no study history.
// The first three subjects are used when none is marked.
func (c *Catalog) BootstrapSubjects() []Subject {
	res := make([]Subject, 0, 3)
	for _, s := range c.Subjects {
		if s.Bootstrap {
			res = append(res, s)
		}
	}
	if len(res) == 0 {
		res = append(res, c.Subjects[:min(3, len(c.Subjects))]...)
	}
	return res
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
