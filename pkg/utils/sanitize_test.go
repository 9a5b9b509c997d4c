package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Achar Co ", "Achar Co"},
		{"<b>Showcase</b>", "Showcase"},
		{`<script>alert(1)</script>Papad`, "Papad"},
		{"Achar & Co", "Achar & Co"},
		{"&lt;b&gt;Papad&lt;/b&gt;", "Papad"},
		{"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Achar", "Achar"},
		{"Rs 5 &lt; Rs 10", "Rs 5 < Rs 10"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "input %q", tt.in)
	}
}

func TestCleanOptional(t *testing.T) {
	assert.Nil(t, CleanOptional(nil))
	blank := "  <i></i> "
	assert.Nil(t, CleanOptional(&blank))
	v := "<em>+91-9876543210</em>"
	got := CleanOptional(&v)
	if assert.NotNil(t, got) {
		assert.Equal(t, "+91-9876543210", *got)
	}
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"Mango pickle", "Lime pickle"}, CleanList([]string{"Mango pickle", " ", "<b>Lime pickle</b>"}))
	assert.Empty(t, CleanList(nil))
}
