package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConversionStore {
	t.Helper()
	s, err := NewConversionStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConversionStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)

	c := &Conversion{
		Input:  "https://example.org/pato.owl",
		Output: "pato.obo",
		Format: "obo",
	}
	require.NoError(t, s.Create(c))
	assert.NotZero(t, c.ID)
	assert.Equal(t, StatusPending, c.Status)

	require.NoError(t, s.SetRunning(c.ID))
	got, err := s.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, s.Finish(c.ID, "", 1500*time.Millisecond))
	got, err = s.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, int64(1500), got.DurationMS)
	assert.Empty(t, got.Error)
}

func TestConversionStore_FinishWithError(t *testing.T) {
	s := newTestStore(t)

	c := &Conversion{Input: "in.owl", Output: "out.obo"}
	require.NoError(t, s.Create(c))

	require.NoError(t, s.Finish(c.ID, "robot exited with status 1", time.Second))
	got, err := s.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "status 1")
}

func TestConversionStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(42)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.SetRunning(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConversionStore_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"a.owl", "b.owl", "c.owl"} {
		require.NoError(t, s.Create(&Conversion{Input: name, Output: name + ".obo"}))
	}

	all, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.owl", all[0].Input)

	limited, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
