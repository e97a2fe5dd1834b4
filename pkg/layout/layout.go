// Package layout implements the %%token%% substitution format used by pattern
// views.
//
// A token is "%%" followed by identifier characters and closed by "%%". The
// suffix "-alttext" names the alternate text of an image feature, so
// %%photo-alttext%% refers to feature "photo".
package layout

import (
	"regexp"
	"sort"
	"strings"
)

// AltTextSuffix marks the alternate-text companion of an image feature token.
const AltTextSuffix = "-alttext"

var tokenPattern = regexp.MustCompile(`%%([A-Za-z0-9_-]+)%%`)

// ExtractTokens returns the distinct tokens in text, sorted.
func ExtractTokens(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}
	return sortedKeys(seen)
}

// FeatureName maps a token to the feature it references and reports whether
// it asks for the alternate text.
func FeatureName(token string) (string, bool) {
	if base, ok := strings.CutSuffix(token, AltTextSuffix); ok && base != "" {
		return base, true
	}
	return token, false
}

// FeatureNames returns the distinct feature names referenced by text.
func FeatureNames(text string) []string {
	seen := make(map[string]struct{})
	for _, token := range ExtractTokens(text) {
		name, _ := FeatureName(token)
		seen[name] = struct{}{}
	}
	return sortedKeys(seen)
}

// LintResult compares a layout with the features of a template. It is
// advisory only.
type LintResult struct {
	FoundInBoth  []string `json:"found_in_both"`
	LayoutOnly   []string `json:"layout_only"`
	TemplateOnly []string `json:"template_only"`
}

// Clean reports whether layout and template agree.
func (r LintResult) Clean() bool {
	return len(r.LayoutOnly) == 0 && len(r.TemplateOnly) == 0
}

func Lint(text string, featureNames []string) LintResult {
	inLayout := make(map[string]struct{})
	for _, name := range FeatureNames(text) {
		inLayout[name] = struct{}{}
	}
	inTemplate := make(map[string]struct{}, len(featureNames))
	for _, name := range featureNames {
		inTemplate[name] = struct{}{}
	}

	both := make(map[string]struct{})
	layoutOnly := make(map[string]struct{})
	templateOnly := make(map[string]struct{})
	for name := range inLayout {
		if _, ok := inTemplate[name]; ok {
			both[name] = struct{}{}
		} else {
			layoutOnly[name] = struct{}{}
		}
	}
	for name := range inTemplate {
		if _, ok := inLayout[name]; !ok {
			templateOnly[name] = struct{}{}
		}
	}

	return LintResult{
		FoundInBoth:  sortedKeys(both),
		LayoutOnly:   sortedKeys(layoutOnly),
		TemplateOnly: sortedKeys(templateOnly),
	}
}

// Resolver supplies the replacement for one token.
type Resolver func(token string) string

// Render replaces tokens one at a time, left to right, until none remain in
// the unscanned part of text. Replacement text is never rescanned.
func Render(text string, resolve Resolver) string {
	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for {
		loc := tokenPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:loc[0]])
		b.WriteString(resolve(rest[loc[2]:loc[3]]))
		rest = rest[loc[1]:]
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
