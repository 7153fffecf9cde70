package shell

import (
	"fmt"
	"regexp"
	"strings"

	askerrors "github.com/abdul-hamid-achik/ask/internal/errors"
)

// dangerousPatterns are shell fragments that are never executed, even
// after operator approval. The confirmation prompt shows what the
// model proposed; this screen catches what a hurried Enter would run.
var dangerousPatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"mkfs.",
	"dd if=/dev/",
	":(){:|:&};:", // fork bomb
	"> /dev/sd",
	"chmod -r 777 /",
	"shutdown",
	"reboot",
	"init 0",
	"init 6",
	"find / -delete",
	"find / -exec rm",
}

// exfilPatterns are blocked when commands appear to push data out
// through raw socket redirections (case-sensitive paths).
var exfilPatterns = []string{
	"/dev/tcp/",
	"/dev/udp/",
}

// obfuscationPatterns detect encoded or piped-to-shell execution that
// would smuggle a blocked command past the simple pattern checks.
var obfuscationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`base64\s+(-d|--decode)\s*\|\s*(bash|sh|zsh|exec)`),
	regexp.MustCompile(`base64\s+(-d|--decode)`),
	regexp.MustCompile(`xxd\s+-r.*\|\s*(bash|sh|zsh|exec)`),
	regexp.MustCompile(`printf\s+.*\\x[0-9a-fA-F].*\|\s*(bash|sh|zsh|exec)`),
	regexp.MustCompile(`(curl|wget)\s+.*\|\s*(bash|sh|zsh|exec)`),
}

// evasionPatterns detect backslash insertion, hex escapes, and command
// substitution wrapping a destructive command.
var evasionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`r\\m\s`),
	regexp.MustCompile(`s\\hutdown`),
	regexp.MustCompile(`re\\boot`),
	regexp.MustCompile(`mk\\fs`),
	regexp.MustCompile(`\$'\\x[0-9a-fA-F]{2}`),
	regexp.MustCompile(`eval\s+.*\$`),
	regexp.MustCompile(`\$\(.*\brm\b.*-rf\b`),
	regexp.MustCompile("`.*(\\brm\\b.*-rf\\b)"),
}

// CheckSafety screens a command against all blocklist layers before it
// reaches the shell. Returns nil when the command may run.
func CheckSafety(command string) error {
	lower := strings.ToLower(strings.TrimSpace(command))

	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return askerrors.CommandBlocked(fmt.Sprintf("command blocked: contains dangerous pattern %q", pattern))
		}
	}

	for _, pattern := range exfilPatterns {
		if strings.Contains(command, pattern) {
			return askerrors.CommandBlocked(fmt.Sprintf("command blocked: contains network exfiltration pattern %q", pattern))
		}
	}

	for _, re := range obfuscationPatterns {
		if re.MatchString(command) {
			return askerrors.CommandBlocked("command blocked: contains obfuscated/encoded command execution pattern")
		}
	}

	for _, re := range evasionPatterns {
		if re.MatchString(command) {
			return askerrors.CommandBlocked("command blocked: contains command evasion pattern")
		}
	}

	return nil
}
