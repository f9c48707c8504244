package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("petit texte", 1500, 200)
	if len(chunks) != 1 || chunks[0] != "petit texte" {
		t.Errorf("got %v", chunks)
	}
}

func TestSplitTextChunksAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 100) + strings.Repeat("b", 100) + strings.Repeat("c", 50)
	chunks := SplitText(text, 100, 20)

	if len(chunks) != 3 {
		t.Fatalf("chunk count = %d, want 3", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if len([]rune(c)) != 100 {
			t.Errorf("chunk %d len = %d", i, len([]rune(c)))
		}
	}
	// Each chunk starts 80 runes after the previous one.
	if chunks[1][:20] != strings.Repeat("a", 20) {
		t.Errorf("overlap missing: %q", chunks[1][:20])
	}
	// Reassembling with the overlap removed gives back the input.
	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += c[20:]
	}
	if rebuilt != text {
		t.Error("chunks do not cover the input")
	}
}

func TestSplitTextRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 30)
	chunks := SplitText(text, 10, 2)
	for i, c := range chunks {
		if strings.ContainsRune(c, '�') {
			t.Errorf("chunk %d split inside a rune: %q", i, c)
		}
		for _, r := range c {
			if r != 'é' {
				t.Errorf("chunk %d corrupted: %q", i, c)
			}
		}
	}
}
