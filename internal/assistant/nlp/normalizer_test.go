package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "BONJOUR", "bonjour"},
		{"accents stripped", "Yaoundé, gâteau préféré", "yaounde gateau prefere"},
		{"punctuation removed", "c'est combien ?!", "c est combien"},
		{"whitespace collapsed", "  trop   d espaces  ", "trop d espaces"},
		{"digits kept", "moins de 5 000 FCFA", "moins de 5 000 fcfa"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Je cherche un gâteau pas cher à Yaoundé !",
		"Écouteurs Bluetooth, taille M",
		"ça coûte combien ???",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalizing twice must not change the result")
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"gateau", "au", "chocolat"}, Tokenize("Gâteau au chocolat"))
	assert.Nil(t, Tokenize("   "))
}
