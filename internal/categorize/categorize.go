// Package categorize assigns free-text advising topics to a fixed, ordered
// set of categories by keyword matching.
//
// Matching is substring based and order sensitive: the first category
// (in list order) with any keyword contained in the cleaned text wins.
// "plan" therefore matches "explanation", and "lab" matches "collaborate";
// the behavior is kept because historical reports were produced with it.
package categorize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultFallback is the category for text no keyword matches.
const DefaultFallback = "Other"

// Category is a named keyword list.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultCategories returns the built-in categories in priority order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Internships", Keywords: []string{"internship", "internships", "practical experience", "recruitment"}},
		{Name: "Applications / Essays", Keywords: []string{"essay", "application", "apply", "personal statement", "application review"}},
		{Name: "Course Planning", Keywords: []string{"course", "registration", "class", "winter", "spring", "plan", "planning"}},
		{Name: "Resume / Career", Keywords: []string{"resume", "career", "job", "fair", "job searching"}},
		{Name: "Research", Keywords: []string{"research", "undergraduate research", "lab", "390r", "a i m s"}},
		{Name: "Admissions", Keywords: []string{"admission", "transfer", "undeclared", "paul allen", "allen school"}},
	}
}

// Categorizer maps cleaned topic text to a category name.
type Categorizer struct {
	categories []Category
	fallback   string
}

// New builds a Categorizer. Keywords are lower-cased and blank keywords are
// ignored. An empty fallback becomes DefaultFallback.
func New(categories []Category, fallback string) *Categorizer {
	if fallback == "" {
		fallback = DefaultFallback
	}
	normalized := make([]Category, 0, len(categories))
	for _, c := range categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized = append(normalized, Category{Name: strings.TrimSpace(c.Name), Keywords: kws})
	}
	return &Categorizer{categories: normalized, fallback: fallback}
}

// Default returns a Categorizer over DefaultCategories.
func Default() *Categorizer {
	return New(DefaultCategories(), DefaultFallback)
}

// Categorize returns the first category whose keyword occurs in text.
// text is expected to be cleaned already (lower-case, punctuation removed).
func (c *Categorizer) Categorize(text string) string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return c.fallback
	}
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				return cat.Name
			}
		}
	}
	return c.fallback
}

// Names returns every category name followed by the fallback.
func (c *Categorizer) Names() []string {
	out := make([]string, 0, len(c.categories)+1)
	for _, cat := range c.categories {
		out = append(out, cat.Name)
	}
	return append(out, c.fallback)
}

// Fallback returns the category used when nothing matches.
func (c *Categorizer) Fallback() string {
	return c.fallback
}

// Categories returns a copy of the configured categories.
func (c *Categorizer) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

type fileFormat struct {
	Fallback   string     `yaml:"fallback"`
	Categories []Category `yaml:"categories"`
}

// LoadFile reads a YAML category list:
//
//	fallback: Other
//	categories:
//	  - name: Internships
//	    keywords: [internship, recruitment]
func LoadFile(path string) (*Categorizer, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML category list.
func Parse(data []byte) (*Categorizer, error) {
	var f fileFormat
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("parse categories: no categories defined")
	}
	seen := make(map[string]struct{}, len(f.Categories))
	for i, cat := range f.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("parse categories: category %d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("parse categories: duplicate category %q", name)
		}
		seen[name] = struct{}{}
	}
	return New(f.Categories, f.Fallback), nil
}
