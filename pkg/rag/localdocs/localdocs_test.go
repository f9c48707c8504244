package localdocs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDetectDomain(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"combien pour isoler mes combles avec de la laine de verre ?", "isolation"},
		{"je veux changer mes fenêtres en double vitrage", "menuiserie"},
		{"refaire le carrelage de la salle de bain", "carrelage"},
		{"fissure sur un mur porteur", "gros_oeuvre"},
		{"mon tableau électrique disjoncte", "electricite"},
		{"fuite sous le chauffe-eau", "plomberie"},
		{"quelle couleur pour le salon ?", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DetectDomain(tt.query); got != tt.want {
			t.Errorf("DetectDomain(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const isolationDoc = `# Isolation

## Combles perdus

Le soufflage de ouate de cellulose dans les combles perdus coûte entre 18 et 35 euros le m2 pour une résistance R égale à 7. C'est la technique la plus économique pour isoler les combles.

## Murs

L'isolation des murs par l'intérieur avec doublage colle coûte entre 50 et 90 euros le m2.
`

const corpsDoc = `# Corps de métier

## Plaquiste

Le plaquiste pose les cloisons en plaques de plâtre et les doublages isolants.
`

func TestCascadeSearchPrimaryDoc(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "isolation", isolationDoc)
	writeDoc(t, dir, "corps_de_metier", corpsDoc)

	s := NewSearcher(dir)
	snippets, consulted := s.CascadeSearch("quel prix pour souffler de la ouate de cellulose dans les combles perdus", "isolation")

	if len(snippets) == 0 {
		t.Fatal("no snippets returned")
	}
	if snippets[0].Source != "isolation.md" {
		t.Errorf("Source = %q", snippets[0].Source)
	}
	if snippets[0].Level != 1 {
		t.Errorf("Level = %d, want 1 (primary doc)", snippets[0].Level)
	}
	if len(consulted) == 0 || consulted[0] != "isolation.md" {
		t.Errorf("consulted = %v", consulted)
	}
}

func TestCascadeSearchFallsBackToRelated(t *testing.T) {
	dir := t.TempDir()
	// No isolation.md: the cascade consults the related docs.
	writeDoc(t, dir, "corps_de_metier", corpsDoc)

	s := NewSearcher(dir)
	snippets, consulted := s.CascadeSearch("qui pose les cloisons en plaques de plâtre", "isolation")

	if len(consulted) == 0 {
		t.Fatal("related docs not consulted")
	}
	found := false
	for _, sn := range snippets {
		if sn.Source == "corps_de_metier.md" && sn.Level == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("no related snippet: %+v", snippets)
	}
}

func TestCascadeSearchUnknownDomain(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "corps_de_metier", corpsDoc)

	s := NewSearcher(dir)
	_, consulted := s.CascadeSearch("une question sans domaine", "")

	// Unknown domain still checks the general doc.
	if len(consulted) != 1 || consulted[0] != "corps_de_metier.md" {
		t.Errorf("consulted = %v", consulted)
	}
}

func TestCascadeSearchEmptyDir(t *testing.T) {
	s := NewSearcher(t.TempDir())
	snippets, consulted := s.CascadeSearch("isolation des combles", "isolation")

	if len(snippets) != 0 || len(consulted) != 0 {
		t.Errorf("empty dir should yield nothing, got %v %v", snippets, consulted)
	}
}

// Oversized accented paragraphs must be cut on rune boundaries.
func TestSplitMarkdownLongAccentedChunk(t *testing.T) {
	chunks := splitMarkdown("## Tarifs\n\n" + strings.Repeat("é", 1200))
	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d", len(chunks))
	}
	got := chunks[0].text
	if !utf8.ValidString(got) {
		t.Error("truncated chunk is not valid UTF-8")
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("missing ellipsis: %q", got[len(got)-8:])
	}
	if n := len([]rune(got)); n != maxSnippetLen+1 {
		t.Errorf("rune length = %d, want %d", n, maxSnippetLen+1)
	}
}

func TestEnsureDomainDoc(t *testing.T) {
	dir := t.TempDir()
	s := NewSearcher(dir)

	path, err := s.EnsureDomainDoc("gros_oeuvre")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[:13]) != "# Gros Oeuvre" {
		t.Errorf("header = %q", string(raw))
	}

	// Existing docs are left untouched.
	writeDoc(t, dir, "isolation", isolationDoc)
	path2, err := s.EnsureDomainDoc("isolation")
	if err != nil {
		t.Fatal(err)
	}
	raw2, _ := os.ReadFile(path2)
	if string(raw2) != isolationDoc {
		t.Errorf("existing doc rewritten")
	}
}
