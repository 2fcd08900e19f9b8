package infrastructure

import "strings"

// shellMeta lists the characters a POSIX shell would interpret
const shellMeta = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// QuoteArg renders one argument the way it would have to be typed into a shell.
// Only used to make tool transcripts copy-pasteable; processes are never started through a shell.
func QuoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellMeta) {
		return s
	}
	// close the quote, emit a double-quoted ', reopen
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// CommandLine renders binary and args as a single shell-quoted line
func CommandLine(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, QuoteArg(binary))
	for _, arg := range args {
		parts = append(parts, QuoteArg(arg))
	}
	return strings.Join(parts, " ")
}
