package adapter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docweave/engine/adapter"
)

func TestPlainAdapter_RoundTrip(t *testing.T) {
	var a adapter.PlainAdapter
	text, structure, err := a.Extract([]byte("Hello {d.name}"))
	require.NoError(t, err)
	assert.Equal(t, "Hello {d.name}", text)

	out, err := a.Inject(text, "Hello World", structure, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(out))
}

func TestHTMLAdapter_ExtractJoinsTextNodes(t *testing.T) {
	a := adapter.NewHTMLAdapter()
	html := `<html><body><p>Hello {d.name}</p><p>Bye {d.name}</p></body></html>`
	text, _, err := a.Extract([]byte(html))
	require.NoError(t, err)
	assert.Contains(t, text, "Hello {d.name}")
	assert.Contains(t, text, "Bye {d.name}")
}

func TestHTMLAdapter_InjectReplacesTextAndSanitizes(t *testing.T) {
	a := adapter.NewHTMLAdapter()
	html := `<html><body><p>Hello {d.name}</p></body></html>`
	text, structure, err := a.Extract([]byte(html))
	require.NoError(t, err)

	processed := strings.ReplaceAll(text, "{d.name}", "<script>alert(1)</script>")
	out, err := a.Inject(text, processed, structure, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
}
