package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTranslationResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "plain array",
			input:     `[{"index": 0, "text": "抱きしめて"}, {"index": 1, "text": "今すぐ"}]`,
			wantCount: 2,
		},
		{
			name: "preamble and trailing text",
			input: `Here are the lyrics:
			[{"index": 3, "text": "Tiens-moi"}]
			Enjoy the song!`,
			wantCount: 1,
		},
		{
			name:      "results wrapper",
			input:     `{"results": [{"index": 0, "text": "Halt mich"}]}`,
			wantCount: 1,
		},
		{
			name:      "lines wrapper",
			input:     `{"lines": [{"index": 0, "text": "Abrázame"}, {"index": 1, "text": "ahora"}]}`,
			wantCount: 2,
		},
		{
			name:      "stray backslash escape",
			input:     `[{"index": 0, "text": "hold me\Nnow"}]`,
			wantCount: 1,
		},
		{name: "empty array", input: `[]`, wantErr: true},
		{name: "plain text", input: `I cannot translate this.`, wantErr: true},
		{name: "truncated", input: `[{"index": 0, "text": "cut`, wantErr: true},
		{name: "only empty text", input: `[{"index": 0, "text": ""}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractTranslationResults(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, results, tt.wantCount)
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := map[string]string{
		`[{"index": 0}]`:                    `[{"index": 0}]`,
		"```json\n[{\"index\": 0}]\n```":    `[{"index": 0}]`,
		"```\n[{\"index\": 0}]\n```":        `[{"index": 0}]`,
		"  \n```json\n[{\"index\": 0}]```  ": `[{"index": 0}]`,
	}
	for input, want := range tests {
		assert.Equal(t, want, cleanJSONResponse(input), "input %q", input)
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	assert.Equal(t, `a\\Nb`, fixInvalidEscapes(`a\Nb`))
	assert.Equal(t, `a\nb \"q\"`, fixInvalidEscapes(`a\nb \"q\"`))
	assert.Equal(t, `trailing\`, fixInvalidEscapes(`trailing\`))
}

func TestParseResults(t *testing.T) {
	results, err := parseResults("Gemini", "```json\n[{\"index\": 1, \"text\": \"ahora\"}]\n```", 1)
	require.NoError(t, err)
	assert.Equal(t, []TranslationResult{{Index: 1, Text: "ahora"}}, results)

	_, err = parseResults("Gemini", "", 1)
	assert.ErrorContains(t, err, "no text in Gemini response")

	_, err = parseResults("OpenAI", `[{"index": 0, "text": "uno"}]`, 2)
	assert.ErrorContains(t, err, "expected 2 results, got 1")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
}
