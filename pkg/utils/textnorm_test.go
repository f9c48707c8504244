package utils

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Rénover", "renover"},
		{"  Combien   coûte\tun DEVIS ?  ", "combien coute un devis ?"},
		{"Électricité à Évreux", "electricite a evreux"},
		{"déjà normalisé", "deja normalise"},
	}

	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
