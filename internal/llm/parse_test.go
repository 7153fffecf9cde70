package llm

import (
	"reflect"
	"testing"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		conversational []string
		commands       []string
	}{
		{
			name:     "single command",
			content:  "ls -la\n",
			commands: []string{"ls -la"},
		},
		{
			name:     "multiple commands in order",
			content:  "mkdir -p build\ncd build\ncmake ..",
			commands: []string{"mkdir -p build", "cd build", "cmake .."},
		},
		{
			name:           "conversational only",
			content:        "# Hello! I can help with shell commands.",
			conversational: []string{"Hello! I can help with shell commands."},
		},
		{
			name:           "explanation before command",
			content:        "# This lists hidden files too\nls -la",
			conversational: []string{"This lists hidden files too"},
			commands:       []string{"ls -la"},
		},
		{
			name:     "code fences stripped",
			content:  "```bash\nls -la\n```",
			commands: []string{"ls -la"},
		},
		{
			name:     "blank lines skipped",
			content:  "\n\nls\n\n\npwd\n",
			commands: []string{"ls", "pwd"},
		},
		{
			name:           "double hash still conversational",
			content:        "## heading style reply",
			conversational: []string{"heading style reply"},
		},
		{
			name:    "bare hash dropped",
			content: "#",
		},
		{
			name:    "empty content",
			content: "",
		},
		{
			name:     "surrounding whitespace trimmed",
			content:  "   ls -l   ",
			commands: []string{"ls -l"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := ParseReply(tt.content)
			if !reflect.DeepEqual(reply.Conversational, tt.conversational) {
				t.Errorf("Conversational = %v, want %v", reply.Conversational, tt.conversational)
			}
			if !reflect.DeepEqual(reply.Commands, tt.commands) {
				t.Errorf("Commands = %v, want %v", reply.Commands, tt.commands)
			}
		})
	}
}
