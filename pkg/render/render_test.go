package render_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/changanya/pkg/render"
)

type membership struct {
	Bits    int             `json:"bits"    yaml:"bits"`
	Results map[string]bool `json:"results" yaml:"results"`
}

func (m membership) Table() render.Table {
	return render.Table{
		Title:   "Bloom filter",
		Summary: []render.Field{{Name: "bits", Value: render.Count(m.Bits)}},
		Header:  []string{"item", "member"},
		Rows: [][]any{
			{"apple", render.Verdict{OK: m.Results["apple"], Yes: "maybe", No: "no"}},
			{"pear", render.Verdict{OK: m.Results["pear"], Yes: "maybe", No: "no"}},
		},
	}
}

func sample() membership {
	return membership{Bits: 28756, Results: map[string]bool{"apple": true, "pear": false}}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := render.New(&bytes.Buffer{}, "csv", false)
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r, err := render.New(&buf, render.FormatJSON, false)
	require.NoError(t, err)
	require.NoError(t, r.Render(sample()))

	var got membership
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestRenderYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r, err := render.New(&buf, render.FormatYAML, false)
	require.NoError(t, err)
	require.NoError(t, r.Render(sample()))

	var got membership
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), "bits: 28756")
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r, err := render.New(&buf, render.FormatTable, false)
	require.NoError(t, err)
	assert.Equal(t, render.FormatTable, r.Format())
	require.NoError(t, r.Render(sample()))

	out := buf.String()
	assert.Contains(t, out, "Bloom filter")
	assert.Contains(t, out, "28,756")
	assert.Contains(t, out, "apple")
	assert.Contains(t, out, "maybe")
	assert.Contains(t, out, "no")
	assert.Contains(t, out, "Total: 2 rows")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderTableColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	r, err := render.New(&buf, render.FormatTable, true)
	require.NoError(t, err)
	require.NoError(t, r.Render(sample()))

	assert.Contains(t, buf.String(), "\x1b[32mmaybe")
	assert.Contains(t, buf.String(), "\x1b[31mno")
}

func TestHumanFormats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3.5 KiB", render.Bytes(3595))
	assert.Equal(t, "0 B", render.Bytes(-1))
	assert.Equal(t, "9,585,059", render.Count(9585059))
	assert.Equal(t, "89.06%", render.Percent(0.890625))
}
