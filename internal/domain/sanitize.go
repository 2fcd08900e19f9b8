package domain

import "strings"

var illegalFilenameChars = strings.NewReplacer(
	`\`, "", "/", "", "*", "", "?", "", ":", "", `"`, "", "<", "", ">", "", "|", "",
)

// SanitizeFilename removes characters that are illegal in file names: \ / * ? : " < > |
// Nothing else is changed.
func SanitizeFilename(text string) string {
	return illegalFilenameChars.Replace(text)
}
