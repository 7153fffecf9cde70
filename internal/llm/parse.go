package llm

import "strings"

// ParseReply splits raw model output into conversational lines and
// candidate commands. Lines prefixed with "# " are conversational;
// every other non-empty line is a command, in reply order. Code fence
// markers are dropped in case the model ignores its instructions.
func ParseReply(content string) *Reply {
	reply := &Reply{}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "```") || strings.HasSuffix(line, "```") {
			continue
		}
		if strings.HasPrefix(line, "#") {
			text := strings.TrimSpace(strings.TrimLeft(line, "#"))
			if text != "" {
				reply.Conversational = append(reply.Conversational, text)
			}
			continue
		}
		reply.Commands = append(reply.Commands, line)
	}

	return reply
}
