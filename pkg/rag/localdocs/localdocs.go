// Package localdocs searches the bundled markdown reference documents
// with a strict cascade strategy: the specialized domain doc first, then
// at most two related docs, three documents total. Web research (handled
// elsewhere) is only attempted when the cascade comes back empty.
package localdocs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nextmind-agent-be/pkg/utils"
)

const (
	maxDocs           = 3
	strongScore       = 0.35
	secondChunkScore  = 0.30
	maxSnippetLen     = 900
	primarySnippets   = 3
	relatedSnippets   = 2
	maxReturnSnippets = 4
)

var tokenRe = regexp.MustCompile(`[0-9a-zA-ZÀ-ÖØ-öø-ÿ]+`)

var stopwordsFR = map[string]bool{
	"a": true, "au": true, "aux": true, "avec": true, "ce": true, "ces": true,
	"dans": true, "de": true, "des": true, "du": true, "elle": true, "en": true,
	"et": true, "eux": true, "il": true, "je": true, "la": true, "le": true,
	"les": true, "leur": true, "lui": true, "ma": true, "mais": true, "me": true,
	"meme": true, "mêmes": true, "mes": true, "moi": true, "mon": true, "ne": true,
	"nos": true, "notre": true, "nous": true, "on": true, "ou": true, "par": true,
	"pas": true, "pour": true, "qu": true, "que": true, "qui": true, "sa": true,
	"se": true, "ses": true, "son": true, "sur": true, "ta": true, "te": true,
	"tes": true, "toi": true, "ton": true, "tu": true, "un": true, "une": true,
	"vos": true, "votre": true, "vous": true, "y": true, "à": true, "ça": true,
	"cest": true, "cette": true, "cet": true, "comme": true, "est": true,
	"sont": true, "être": true, "etre": true, "fait": true, "faire": true,
	"comment": true, "pourquoi": true, "quoi": true, "quand": true,
	"combien": true, "où": true,
}

// Snippet is one scored chunk of a local document.
type Snippet struct {
	Source  string  `json:"source"`
	Level   int     `json:"level"` // 1 primary doc, 2 related doc, 3 reserved for web
	Heading string  `json:"heading,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type domainPattern struct {
	domain string
	re     *regexp.Regexp
}

var domainPatterns = []domainPattern{
	{"isolation", regexp.MustCompile(`(?i)\b(isolation|isolant|laine\s+de\s+verre|laine\s+de\s+roche|ouate|pare[- ]vapeur|ITI|ITE|ponts?\s+thermiques?)\b`)},
	{"menuiserie", regexp.MustCompile(`(?i)\b(menuiserie|fen[eê]tre|portes?|baie\s+vitr[eé]e|volet|dormant|ouvrant|double\s+vitrage|triple\s+vitrage)\b`)},
	{"carrelage", regexp.MustCompile(`(?i)\b(carrelage|carreaux|fa[iï]ence|joints?\b|ragr[eé]age|chape|plinthes?\s+carrelage)\b`)},
	{"gros_oeuvre", regexp.MustCompile(`(?i)\b(gros\s*œuvre|gros\s*oeuvre|ma[cç]onnerie|b[eé]ton|dalle|fondations?|poutre|linteau|mur\s+porteur|fissures?)\b`)},
	{"electricite", regexp.MustCompile(`(?i)\b([eé]lectricit[eé]|[eé]lectricien|tableau\s+[eé]lectrique|disjonct|diff[eé]rentiel|prise|interrupteur|gaine|goulotte|consuel)\b`)},
	{"plomberie", regexp.MustCompile(`(?i)\b(plomberie|plombier|fuite|robinet|sanitaire|evacuation|[eé]vacuation|siphon|wc|toilettes|douche|baignoire|chauffe[- ]eau|ballon)\b`)},
}

// Related docs per domain; the cascade consults at most 2 of them.
var relatedDocs = map[string][]string{
	"isolation":   {"gros_oeuvre", "menuiserie", "corps_de_metier"},
	"menuiserie":  {"isolation", "gros_oeuvre", "corps_de_metier"},
	"carrelage":   {"gros_oeuvre", "isolation", "corps_de_metier"},
	"gros_oeuvre": {"isolation", "menuiserie", "corps_de_metier"},
	"electricite": {"gros_oeuvre", "corps_de_metier", "isolation"},
	"plomberie":   {"gros_oeuvre", "carrelage", "corps_de_metier"},
}

// DetectDomain maps a query to one of the known work domains, or "".
func DetectDomain(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	for _, p := range domainPatterns {
		if p.re.MatchString(q) {
			return p.domain
		}
	}
	return ""
}

// Searcher runs the cascade over a documents directory.
type Searcher struct {
	docsDir string
}

func NewSearcher(docsDir string) *Searcher {
	return &Searcher{docsDir: docsDir}
}

func (s *Searcher) DocsDir() string {
	return s.docsDir
}

func queryTokens(query string) []string {
	tokens := tokenRe.FindAllString(query, -1)
	seen := make(map[string]bool)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if len([]rune(t)) < 3 || stopwordsFR[t] || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenRe.FindAllString(text, -1) {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return set
}

type mdChunk struct {
	heading string
	text    string
}

var blankLinesRe = regexp.MustCompile(`\n\s*\n+`)

// splitMarkdown cuts a document into paragraph-like chunks under each
// heading, keeping every chunk small enough for a prompt.
func splitMarkdown(text string) []mdChunk {
	var chunks []mdChunk
	var heading string
	var buff []string

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(buff, "\n"))
		buff = buff[:0]
		if chunk == "" {
			return
		}
		if len(chunk) <= maxSnippetLen {
			chunks = append(chunks, mdChunk{heading: heading, text: chunk})
			return
		}
		for _, p := range blankLinesRe.Split(chunk, -1) {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			chunks = append(chunks, mdChunk{heading: heading, text: utils.Truncate(p, maxSnippetLen)})
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t")
		if strings.HasPrefix(line, "#") {
			flush()
			if h := strings.TrimSpace(strings.TrimLeft(line, "#")); h != "" {
				heading = h
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		buff = append(buff, line)
	}
	flush()
	return chunks
}

func chunkScore(qTokens []string, chunkText, heading string) float64 {
	if len(qTokens) == 0 {
		return 0
	}
	chunkTokens := tokenSet(chunkText)
	overlap := 0
	for _, t := range qTokens {
		if chunkTokens[t] {
			overlap++
		}
	}
	score := float64(overlap) / float64(len(qTokens))

	if heading != "" {
		headingTokens := tokenSet(heading)
		overlapH := 0
		for _, t := range qTokens {
			if headingTokens[t] {
				overlapH++
			}
		}
		ratio := float64(overlapH) / float64(len(qTokens))
		if ratio > 1 {
			ratio = 1
		}
		score += 0.10 * ratio
	}

	// Slight penalty for very long chunks.
	excess := float64(len(chunkText) - 700)
	if excess < 0 {
		excess = 0
	}
	penalty := excess / 2000
	if penalty > 0.2 {
		penalty = 0.2
	}
	score *= 1 - penalty

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (s *Searcher) bestSnippetsInDoc(query, path string, level, maxSnippets int) []Snippet {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	qTokens := queryTokens(query)
	text := string(data)
	if len(qTokens) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	var scored []Snippet
	for _, chunk := range splitMarkdown(text) {
		score := chunkScore(qTokens, chunk.text, chunk.heading)
		if score <= 0 {
			continue
		}
		scored = append(scored, Snippet{
			Source:  filepath.Base(path),
			Level:   level,
			Heading: chunk.heading,
			Content: chunk.text,
			Score:   score,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > maxSnippets {
		scored = scored[:maxSnippets]
	}
	return scored
}

func (s *Searcher) docPath(name string) string {
	return filepath.Join(s.docsDir, name+".md")
}

// CascadeSearch runs the strict cascade and returns the snippets plus the
// list of consulted document names.
func (s *Searcher) CascadeSearch(query, domain string) ([]Snippet, []string) {
	var consulted []string
	var snippets []Snippet

	if domain != "" {
		primary := s.docPath(domain)
		if _, err := os.Stat(primary); err == nil {
			consulted = append(consulted, filepath.Base(primary))
			s1 := s.bestSnippetsInDoc(query, primary, 1, primarySnippets)
			if len(s1) > 0 && (s1[0].Score >= strongScore || (len(s1) >= 2 && s1[1].Score >= secondChunkScore)) {
				return s1, consulted
			}
			snippets = append(snippets, s1...)
		}
	}

	related, ok := relatedDocs[domain]
	if !ok {
		related = []string{"corps_de_metier"}
	}
	for _, rel := range related {
		if len(consulted) >= maxDocs {
			break
		}
		path := s.docPath(rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		name := filepath.Base(path)
		if contains(consulted, name) {
			continue
		}
		consulted = append(consulted, name)
		s2 := s.bestSnippetsInDoc(query, path, 2, relatedSnippets)
		if len(s2) > 0 && s2[0].Score >= strongScore {
			return s2, consulted
		}
		snippets = append(snippets, s2...)
	}

	sort.SliceStable(snippets, func(i, j int) bool { return snippets[i].Score > snippets[j].Score })
	if len(snippets) > maxReturnSnippets {
		snippets = snippets[:maxReturnSnippets]
	}
	return snippets, consulted
}

// EnsureDomainDoc creates an empty domain doc if missing and returns its
// path. Used by the web research updater.
func (s *Searcher) EnsureDomainDoc(domain string) (string, error) {
	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		return "", err
	}
	path := s.docPath(domain)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	title := cases.Title(language.French).String(strings.ReplaceAll(domain, "_", " "))
	if err := os.WriteFile(path, []byte("# "+title+"\n\n"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
