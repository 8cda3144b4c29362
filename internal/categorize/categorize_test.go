package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizer_Default(t *testing.T) {
	c := Default()

	tests := []struct {
		text string
		want string
	}{
		{"looking for an internship this summer", "Internships"},
		{"practical experience options", "Internships"},
		{"personal statement feedback", "Applications / Essays"},
		{"internship application essay", "Internships"},
		{"winter quarter registration", "Course Planning"},
		{"resume review", "Resume / Career"},
		{"career fair prep", "Resume / Career"},
		{"joining a lab", "Research"},
		{"cse 390r", "Research"},
		{"a i m s program", "Research"},
		{"transfer to the allen school", "Admissions"},
		{"paul allen questions", "Admissions"},
		{"explanation of grades", "Course Planning"},
		{"just saying hi", "Other"},
		{"", "Other"},
		{"   ", "Other"},
		{"RESUME", "Resume / Career"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.text))
		})
	}
}

func TestCategorizer_OrderMatters(t *testing.T) {
	c := New([]Category{
		{Name: "First", Keywords: []string{"shared"}},
		{Name: "Second", Keywords: []string{"shared", "only"}},
	}, "")

	assert.Equal(t, "First", c.Categorize("a shared topic"))
	assert.Equal(t, "Second", c.Categorize("only this"))
	assert.Equal(t, DefaultFallback, c.Fallback())
}

func TestCategorizer_Names(t *testing.T) {
	names := Default().Names()
	assert.Equal(t, []string{
		"Internships", "Applications / Essays", "Course Planning",
		"Resume / Career", "Research", "Admissions", "Other",
	}, names)
}

func TestNew_NormalizesKeywords(t *testing.T) {
	c := New([]Category{{Name: " Visa ", Keywords: []string{" CPT ", "", "OPT"}}}, "Misc")

	assert.Equal(t, "Visa", c.Categorize("cpt paperwork"))
	assert.Equal(t, "Misc", c.Categorize("nothing relevant"))
	assert.Equal(t, []string{"cpt", "opt"}, c.Categories()[0].Keywords)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
		check   func(*testing.T, *Categorizer)
	}{
		{
			name: "valid document",
			doc: `
fallback: Misc
categories:
  - name: Funding
    keywords: [scholarship, financial aid]
  - name: Research
    keywords: [lab]
`,
			check: func(t *testing.T, c *Categorizer) {
				assert.Equal(t, "Funding", c.Categorize("financial aid deadline"))
				assert.Equal(t, "Misc", c.Categorize("hello"))
			},
		},
		{name: "no categories", doc: "fallback: Misc\n", wantErr: true},
		{name: "unnamed category", doc: "categories:\n  - keywords: [x]\n", wantErr: true},
		{name: "duplicate category", doc: "categories:\n  - name: A\n  - name: A\n", wantErr: true},
		{name: "unknown key", doc: "categoriez: []\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: Visa\n    keywords: [cpt]\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Visa", c.Categorize("cpt"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
