package dto

// PublishEmbedDocumentMessage is the broker payload produced by the ingest
// endpoint and consumed by the embedding worker.
type PublishEmbedDocumentMessage struct {
	Source  string `json:"source"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content"`
}
