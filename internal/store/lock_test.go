package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/pkg/errors"
)

func TestLockIsExclusive(t *testing.T) {
	st := New(t.TempDir())

	first, err := st.Lock()
	require.NoError(t, err)
	assert.FileExists(t, first.Path())

	_, err = st.Lock()
	assert.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, first.Unlock())

	again, err := st.Lock()
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}
