package termdriver

import (
	"path"
	"strings"
)

const maxSessionNameRunes = 100

// shellMetacharacters is the set of characters rejected from session names,
// working directories, and environment keys/values, per spec.md §4.3's
// security boundary: these arguments are always passed argv-only to the
// mux binary, but a name containing them would still be confusing or
// dangerous if ever echoed back through a shell (e.g. inside tmux's own
// command parser, which does interpret some of these).
const shellMetacharacters = ";|&$`\n\r"

func isValidSessionName(name string) bool {
	if name == "" || len([]rune(name)) > maxSessionNameRunes {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

func containsShellMetacharacters(s string) bool {
	return strings.ContainsAny(s, shellMetacharacters) || strings.Contains(s, "$(") || strings.Contains(s, "${")
}

func isValidCwd(cwd string) bool {
	if cwd == "" || !path.IsAbs(cwd) {
		return false
	}
	if containsShellMetacharacters(cwd) {
		return false
	}
	for _, seg := range strings.Split(cwd, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

func isValidEnv(env map[string]string) bool {
	for k, v := range env {
		if k == "" || containsShellMetacharacters(k) || containsShellMetacharacters(v) {
			return false
		}
	}
	return true
}
