package web_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parseview/internal/web"
)

func TestTemplates_Parse(t *testing.T) {
	tmpl, err := web.Templates()
	require.NoError(t, err)

	for _, name := range []string{"index.html", "document.html", "elements.html", "header", "footer", "stats", "pager"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTemplates_Pager(t *testing.T) {
	tmpl := web.MustTemplates()

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "pager", map[string]interface{}{
		"Page": 2, "PageCount": 3, "BaseURL": "/view/document?",
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `href="/view/document?page=1"`)
	assert.Contains(t, out, "<b>2</b>")
	assert.Contains(t, out, `href="/view/document?page=3"`)
}
