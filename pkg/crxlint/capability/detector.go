// Package capability detects browser API references in source text and maps
// them to the manifest permissions they require.
package capability

import (
	"regexp"
	"slices"
)

// Prefix is the global namespace object of the extension API.
const Prefix = "chrome."

// apiPattern matches chrome.<namespace> with an optional member. Matching is
// lexical, so references inside comments and string literals count too.
var apiPattern = regexp.MustCompile(`chrome\.(\w+)(?:\.(\w+))?`)

// Detect returns the distinct capability ids ("chrome.<namespace>") referenced
// in text, sorted.
func Detect(text string) []string {
	matches := apiPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := Prefix + m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// DetectBytes is Detect for file contents.
func DetectBytes(data []byte) []string {
	return Detect(string(data))
}
