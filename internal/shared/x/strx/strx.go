package strx

import (
	"bufio"
	"sort"
	"strings"
)

func HeredocTrim(text string) string {
	sb := strings.Builder{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		sb.WriteString(strings.TrimSpace(line))
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return text
	}
	return strings.TrimSpace(sb.String())
}

// Shorten collapses whitespace in s and truncates it to at most width
// characters, dropping whole words and appending the "[...]" placeholder
// when the text does not fit.
func Shorten(s string, width int) string {
	const placeholder = "[...]"

	words := strings.Fields(s)
	collapsed := strings.Join(words, " ")
	if len(collapsed) <= width {
		return collapsed
	}

	out := ""
	for _, w := range words {
		next := w
		if out != "" {
			next = out + " " + w
		}
		if len(next)+len(" "+placeholder) > width {
			break
		}
		out = next
	}
	if out == "" {
		return placeholder
	}
	return out + " " + placeholder
}

// Indent prefixes every non-empty line of s with prefix.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func SortDesc(topLevel map[string]bool) []string {
	r := []string{}
	for k := range topLevel {
		r = append(r, k)
	}
	sort.Slice(r, func(i, j int) bool {
		return r[i] > r[j] // Descending order
	})
	return r
}

func IsInList(id string, list []string) bool {
	for _, s := range list {
		if s == id {
			return true
		}
	}
	return false
}
