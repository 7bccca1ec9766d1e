package modelstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testModel struct {
	Coefficients map[string][]float64 `json:"coefficients"`
	R2           float64              `json:"r2"`
}

func TestStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, zap.NewNop())
	require.NoError(t, err)

	var got testModel
	found, err := s.Get("blood-demand", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := testModel{Coefficients: map[string][]float64{"Flood": {1, 2, 3, 4, 5}}, R2: 0.87}
	require.NoError(t, s.Put("blood-demand", want))
	require.NoError(t, s.Close())

	// survives reopen
	s, err = Open(dir, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	found, err = s.Get("blood-demand", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, s.Delete("blood-demand"))
	found, err = s.Get("blood-demand", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_GetCorrupt(t *testing.T) {
	s, err := Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.db.Put([]byte("bad"), []byte("{not json"), nil))

	var got testModel
	_, err = s.Get("bad", &got)
	assert.Error(t, err)
}
