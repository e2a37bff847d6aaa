package agentdriver

import "strings"

// envMetacharacters mirrors termdriver's security boundary (spec.md §4.3,
// extended to agentdriver by §4.4): env values that cross into a launched
// subprocess's environment are rejected if they contain shell
// metacharacters, even though exec.Cmd never interprets them through a
// shell, so a value can never be mistaken for one if ever echoed.
const envMetacharacters = ";|&$`\n\r"

// ValidKey reports whether an environment variable name is a safe
// identifier: [A-Za-z_][A-Za-z0-9_]*.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ValidValue reports whether an environment variable value is free of
// shell metacharacters.
func ValidValue(value string) bool {
	return !strings.ContainsAny(value, envMetacharacters) && !strings.Contains(value, "$(") && !strings.Contains(value, "${")
}
