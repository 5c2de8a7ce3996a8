package repository

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextArrayNeverSQLNull(t *testing.T) {
	// A nil StringArray drives to SQL NULL, which the NOT NULL array
	// columns reject; cloze and comprehension questions are routinely
	// created without options or categories.
	nilValue, err := pq.StringArray(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)

	v, err := textArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	v, err = textArray(pq.StringArray{"a", "b"}).Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a","b"}`, v)
}
