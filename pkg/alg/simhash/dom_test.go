package simhash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/changanya/pkg/alg/simhash"
)

func TestFromDOM_UsesTagShingles(t *testing.T) {
	t.Parallel()

	const page = `<html><body><div class="x"><p>first</p><br/></div></body></html>`

	got, err := simhash.FromDOM(page, simhash.DefaultBitWidth)
	require.NoError(t, err)

	want, err := simhash.NewFromTokens(
		[]string{"html_body_div", "body_div_p", "div_p_br"}, simhash.DefaultBitWidth)
	require.NoError(t, err)

	assert.True(t, got.Equal(want))
}

func TestFromDOM_ShortDocumentFallsBackToTags(t *testing.T) {
	t.Parallel()

	got, err := simhash.FromDOM("<p>only</p>", simhash.DefaultBitWidth)
	require.NoError(t, err)

	want, err := simhash.NewFromTokens([]string{"p"}, simhash.DefaultBitWidth)
	require.NoError(t, err)

	assert.True(t, got.Equal(want))
}

func TestFromDOM_SimilarStructure(t *testing.T) {
	t.Parallel()

	const (
		pageA = `<html><body><nav><a>1</a><a>2</a></nav><main><h1>t</h1><p>a</p><p>b</p><p>c</p></main></body></html>`
		pageB = `<html><body><nav><a>x</a><a>y</a></nav><main><h1>u</h1><p>d</p><p>e</p><p>f</p></main></body></html>`
	)

	a, err := simhash.FromDOM(pageA, simhash.DefaultBitWidth)
	require.NoError(t, err)

	b, err := simhash.FromDOM(pageB, simhash.DefaultBitWidth)
	require.NoError(t, err)

	// Only text differs, so the structure fingerprints are identical.
	assert.Equal(t, 0, a.HammingDistance(b))
}

func TestFromHTMLText(t *testing.T) {
	t.Parallel()

	const page = `<html><head><style>p { color: red }</style></head>` +
		`<body><p>This is a test</p> <p>string one.</p><script>var x = 1;</script></body></html>`

	got, err := simhash.FromHTMLText(page, simhash.DefaultBitWidth)
	require.NoError(t, err)

	assert.Equal(t, textOneValue, got.String())
}
