package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID     string   `json:"id,omitempty"`
	Number int64    `json:"number"`
	Tags   []string `json:"tags"`
}

func TestEncodeDecode(t *testing.T) {
	doc, err := Encode(sample{ID: "a", Number: 101, Tags: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "a", doc.ID())
	assert.Equal(t, float64(101), doc["number"])

	var out sample
	require.NoError(t, Decode(doc, &out))
	assert.Equal(t, int64(101), out.Number)
	assert.Equal(t, []string{"x"}, out.Tags)
}

func TestEncode_NotAnObject(t *testing.T) {
	_, err := Encode([]int{1, 2})
	assert.Error(t, err)
}
