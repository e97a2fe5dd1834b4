package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "repeated token", text: "%%title%% and %%title%% again", want: []string{"title"}},
		{name: "alttext token kept raw", text: "%%photo-alttext%%", want: []string{"photo-alttext"}},
		{name: "several", text: "<h1>%%title%%</h1><img src=\"%%photo%%\" alt=\"%%photo-alttext%%\">", want: []string{"photo", "photo-alttext", "title"}},
		{name: "none", text: "plain html", want: []string{}},
		{name: "unterminated", text: "%%title% and %%", want: []string{}},
		{name: "bad characters", text: "%%ti tle%% %%a.b%%", want: []string{}},
		{name: "stray percent", text: "100%%%count%%", want: []string{"count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTokens(tt.text))
		})
	}
}

func TestFeatureName(t *testing.T) {
	name, alt := FeatureName("photo-alttext")
	assert.Equal(t, "photo", name)
	assert.True(t, alt)

	name, alt = FeatureName("photo")
	assert.Equal(t, "photo", name)
	assert.False(t, alt)

	name, alt = FeatureName("-alttext")
	assert.Equal(t, "-alttext", name)
	assert.False(t, alt)
}

func TestFeatureNamesNormalizesAltText(t *testing.T) {
	assert.Equal(t, []string{"photo"}, FeatureNames("%%photo-alttext%%"))
	assert.Equal(t, []string{"photo", "title"}, FeatureNames("%%photo%% %%photo-alttext%% %%title%%"))
}

func TestLint(t *testing.T) {
	res := Lint("%%title%% %%photo-alttext%% %%ghost%%", []string{"title", "photo", "summary"})

	assert.Equal(t, []string{"photo", "title"}, res.FoundInBoth)
	assert.Equal(t, []string{"ghost"}, res.LayoutOnly)
	assert.Equal(t, []string{"summary"}, res.TemplateOnly)
	assert.False(t, res.Clean())

	assert.True(t, Lint("%%title%%", []string{"title"}).Clean())
}

func TestRender(t *testing.T) {
	values := map[string]string{
		"title":         "The Good Life",
		"photo":         "/api/image/v1/abc",
		"photo-alttext": "a meadow",
	}
	resolve := func(token string) string { return values[token] }

	got := Render(`<h1>%%title%%</h1><img src="%%photo%%" alt="%%photo-alttext%%"><p>%%title%%</p>`, resolve)
	assert.Equal(t, `<h1>The Good Life</h1><img src="/api/image/v1/abc" alt="a meadow"><p>The Good Life</p>`, got)
}

func TestRenderMissingValueBecomesEmpty(t *testing.T) {
	got := Render("[%%missing%%]", func(string) string { return "" })
	assert.Equal(t, "[]", got)
}

func TestRenderDoesNotRescanSubstitutions(t *testing.T) {
	calls := 0
	got := Render("%%loop%%", func(token string) string {
		calls++
		return "%%loop%%"
	})
	assert.Equal(t, "%%loop%%", got)
	assert.Equal(t, 1, calls)
}

func TestRenderWithoutTokens(t *testing.T) {
	text := strings.Repeat("<p>static</p>", 3)
	assert.Equal(t, text, Render(text, func(string) string { return "x" }))
}
