package pagetext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html>
<head><title> Weaver Notes </title><style>body { color: red }</style></head>
<body>
  <script>console.log("ignore me")</script>
  <h1>Knowledge   Graphs</h1>
  <p>Snippets become
  nodes.</p>
  <noscript>enable js</noscript>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	text, err := FromHTML(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Knowledge Graphs Snippets become nodes.", text)
	assert.NotContains(t, text, "ignore me")
	assert.NotContains(t, text, "enable js")
	assert.NotContains(t, text, "color: red")
}

func TestFromHTMLCapsLength(t *testing.T) {
	huge := "<body><p>" + strings.Repeat("word ", 5000) + "</p></body>"
	text, err := FromHTML(strings.NewReader(huge))
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(text)), MaxRunes)
}

func TestFromHTMLFragment(t *testing.T) {
	text, err := FromHTML(strings.NewReader("<p>just a fragment</p>"))
	require.NoError(t, err)
	assert.Equal(t, "just a fragment", text)
}

func TestTitle(t *testing.T) {
	title, err := Title(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Weaver Notes", title)
}

func TestTitleMissing(t *testing.T) {
	title, err := Title(strings.NewReader("<body></body>"))
	require.NoError(t, err)
	assert.Equal(t, "", title)
}
