package problem

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
# 注释行会被忽略
resource: wood: 木材: 10
Resource: iron : 铁 : 25
product: chair: 3: wood=2
product: table: 5: wood=5: iron=1:
unknown: line
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, p.Resources, 2)
	assert.Equal(t, "木材", p.Resources["wood"].Title)
	assert.Equal(t, int64(25), p.Resources["iron"].Amount)

	require.Len(t, p.Products, 2)
	table := p.Products["table"]
	assert.Equal(t, uint32(5), table.Value)
	require.Len(t, table.Requirements, 2)
	assert.Equal(t, "iron", table.Requirements[1].ResourceID)
	assert.Equal(t, uint32(1), table.Requirements[1].Amount)
}

func TestParseLongProductLine(t *testing.T) {
	const n = 6000

	var sb strings.Builder
	for i := range n {
		fmt.Fprintf(&sb, "resource: r%d: 资源%d: 100\n", i, i)
	}
	sb.WriteString("product: big: 7")
	for i := range n {
		fmt.Fprintf(&sb, ": r%d=1", i)
	}
	sb.WriteString("\n")

	p, err := Parse(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Len(t, p.Resources, n)
	require.Len(t, p.Products["big"].Requirements, n)
	assert.Equal(t, "r5999", p.Products["big"].Requirements[n-1].ResourceID)
}

func TestParseDuplicateOverwrites(t *testing.T) {
	p, err := Parse(strings.NewReader("resource: a: A: 1\nresource: a: A2: 7\n"))
	require.NoError(t, err)

	require.Len(t, p.Resources, 1)
	assert.Equal(t, int64(7), p.Resources["a"].Amount)
	assert.Equal(t, "A2", p.Resources["a"].Title)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad amount":        "resource: a: A: ten\n",
		"negative amount":   "resource: a: A: -1\n",
		"missing fields":    "resource: a\n",
		"bad value":         "product: p: x: a=1\n",
		"bad requirement":   "product: p: 1: a1\n",
		"bad requirement n": "product: p: 1: a=-3\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	p, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, p))

	again, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}
