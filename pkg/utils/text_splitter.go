package utils

// SplitText splits a long string into chunks of roughly chunkSize runes with
// an overlap preserving context at boundaries. Character-based on purpose:
// the embedding providers accept raw text and a tokenizer-aware splitter is
// not worth the dependency for markdown reference docs.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
