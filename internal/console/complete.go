package console

import (
	"path/filepath"
	"sort"
	"strings"
)

// ForthExt is the file extension preferred when completing run arguments.
const ForthExt = ".fs"

// Complete returns candidate replacements for the whole input line. The first
// word completes against built-in and documented commands; the argument of
// run completes file names, preferring FORTH scripts; later words complete
// against ROBOFORTH commands.
func (c *Console) Complete(line string) []string {
	if !strings.Contains(line, " ") {
		return prefixed("", line, c.names())
	}

	head, last := splitLast(line)
	if first, _, _ := strings.Cut(line, " "); first == "run" {
		return prefixed(head, "", completeFile(last))
	}
	return prefixed(head, last, c.help.Forth.Commands())
}

func (c *Console) names() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range append(c.Builtins(), c.help.Commands()...) {
		// Help-only entries such as "Ctrl-C" are not typeable commands.
		if n == "EOF" || n == "ctrlc" || strings.ContainsAny(n, " ") || strings.HasPrefix(n, "Ctrl") {
			continue
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// completeFile lists files matching prefix, FORTH scripts first.
func completeFile(prefix string) []string {
	pattern := escapeGlob(prefix)
	matches, _ := filepath.Glob(pattern + "*" + ForthExt)
	if len(matches) == 0 {
		matches, _ = filepath.Glob(pattern + "*")
	}
	return matches
}

func escapeGlob(s string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`).Replace(s)
}

// splitLast splits line before its last word. A trailing space means the last
// word is empty.
func splitLast(line string) (head, last string) {
	i := strings.LastIndex(line, " ")
	return line[:i+1], line[i+1:]
}

func prefixed(head, prefix string, words []string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, head+w)
		}
	}
	return out
}
