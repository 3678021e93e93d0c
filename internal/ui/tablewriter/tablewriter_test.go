package tablewriter

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlush(t *testing.T) {
	color.NoColor = true

	tw := New(Col("Name"), Col("Members", RightAlign()), NewLineCol("Notes"))
	tw.Write(map[string]interface{}{"Name": "Whales", "Members": 12, "Notes": "big ones"})
	tw.Write(map[string]interface{}{"Name": "OG", "Members": 3})

	var buf bytes.Buffer
	require.NoError(t, tw.Flush(&buf))
	assert.Equal(t,
		"Name    Members\n"+
			"Whales       12\n"+
			"  Notes: big ones\n"+
			"OG            3\n",
		buf.String())
}

func TestFlush_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Col("Name")).Empty("No wallets yet").Flush(&buf))
	assert.Equal(t, "No wallets yet\n", buf.String())

	buf.Reset()
	require.NoError(t, New(Col("Name")).Flush(&buf))
	assert.Empty(t, buf.String())
}
