package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleID_UnmarshalJSON(t *testing.T) {
	var v struct {
		ID FlexibleID `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id":"pay_1"}`), &v))
	assert.Equal(t, "pay_1", v.ID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1234567890123}`), &v))
	assert.Equal(t, "1234567890123", v.ID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id":null}`), &v))
	assert.Empty(t, v.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":{}}`), &v))
}
