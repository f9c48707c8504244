// Package webresearch is an optional, off-by-default fallback used when
// the local documentation cascade finds nothing. Findings can be appended
// back into the local docs so the corpus improves over time.
package webresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"nextmind-agent-be/pkg/rag/localdocs"
)

const (
	tavilyURL      = "https://api.tavily.com/search"
	requestTimeout = 12 * time.Second
)

// Source is one cited search result.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Finding is the summarized outcome of one web search.
type Finding struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Client struct {
	apiKey     string
	enabled    bool
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(apiKey string, enabled bool, logger *log.Logger) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		enabled:    enabled,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.apiKey != ""
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

// Search runs one Tavily search. Returns nil when disabled, on failure,
// or when the response carries neither an answer nor sources.
func (c *Client) Search(ctx context.Context, query string, maxResults int) *Finding {
	if !c.Enabled() {
		return nil
	}
	if maxResults < 1 {
		maxResults = 1
	}
	if maxResults > 5 {
		maxResults = 5
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		MaxResults:    maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyURL, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("[WEB-RESEARCH] tavily request failed: %v", err)
		}
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Printf("[WEB-RESEARCH] tavily returned status %d", resp.StatusCode)
		}
		return nil
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil
	}

	sources := make([]Source, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		if len(sources) >= maxResults {
			break
		}
		url := strings.TrimSpace(item.URL)
		if url == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = url
		}
		sources = append(sources, Source{Title: title, URL: url})
	}

	answer := strings.TrimSpace(parsed.Answer)
	if answer == "" && len(sources) == 0 {
		return nil
	}
	return &Finding{Query: query, Answer: answer, Sources: sources}
}

// AppendFindingToDoc appends a short curated note to the domain doc and
// returns the doc filename, or "" on failure.
func AppendFindingToDoc(searcher *localdocs.Searcher, domain string, finding *Finding, note string, logger *log.Logger) string {
	if finding == nil || domain == "" {
		return ""
	}
	path, err := searcher.EnsureDomainDoc(domain)
	if err != nil {
		if logger != nil {
			logger.Printf("[WEB-RESEARCH] cannot ensure domain doc: %v", err)
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("\n## Ajouts (auto)\n")
	b.WriteString(fmt.Sprintf("- Date: %s\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("- Requête: %s\n", finding.Query))
	if note != "" {
		b.WriteString(fmt.Sprintf("- Note: %s\n", note))
	}
	if finding.Answer != "" {
		b.WriteString("\nSynthèse:\n")
		b.WriteString(finding.Answer + "\n")
	}
	if len(finding.Sources) > 0 {
		b.WriteString("\nSources:\n")
		for i, s := range finding.Sources {
			if i >= 5 {
				break
			}
			b.WriteString(fmt.Sprintf("- %s (%s)\n", s.Title, s.URL))
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("[WEB-RESEARCH] cannot open domain doc: %v", err)
		}
		return ""
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return ""
	}
	return fmt.Sprintf("%s.md", domain)
}
