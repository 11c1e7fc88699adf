package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "plain lines",
			raw:  "Paragraph 1 - Main Point: the tower - Word Count: 300 words\nParagraph 2 - Main Point: the storm - Word Count: 400 words",
			want: []string{
				"Paragraph 1 - Main Point: the tower - Word Count: 300 words",
				"Paragraph 2 - Main Point: the storm - Word Count: 400 words",
			},
		},
		{
			name: "numbered with dots and parens",
			raw:  "1. Setting\n2) Conflict\n(3) Resolution",
			want: []string{"Setting", "Conflict", "Resolution"},
		},
		{
			name: "bullets",
			raw:  "- one\n* two\n• three\n+ four",
			want: []string{"one", "two", "three", "four"},
		},
		{
			name: "blank lines, crlf and fences",
			raw:  "```text\r\n1. alpha\r\n\r\n   \r\n2. beta\r\n```",
			want: []string{"alpha", "beta"},
		},
		{
			name: "markdown heading skipped",
			raw:  "## Plan\n1. intro",
			want: []string{"intro"},
		},
		{
			name: "hash numbering is a step, not a heading",
			raw:  "# Outline\n#1 Setting\n#2: Conflict\n#\n#hashtag ending",
			want: []string{"Setting", "Conflict", "#hashtag ending"},
		},
		{
			name: "number without marker kept",
			raw:  "1984 was the year",
			want: []string{"1984 was the year"},
		},
		{
			name: "marker only line dropped",
			raw:  "1. \n- \nreal",
			want: []string{"real"},
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePlan(tt.raw).Steps)
		})
	}
}

func TestPlan_Step(t *testing.T) {
	p := Plan{Steps: []string{"a", "b"}}

	s, ok := p.Step(1)
	assert.True(t, ok)
	assert.Equal(t, "b", s)

	_, ok = p.Step(2)
	assert.False(t, ok)
	_, ok = p.Step(-1)
	assert.False(t, ok)
}

func TestPlan_String(t *testing.T) {
	assert.Equal(t, "1. setting\n2. resolution", Plan{Steps: []string{"setting", "resolution"}}.String())
	assert.Equal(t, "", Plan{}.String())
}
