package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestCOCOTable(t *testing.T) {
	table := COCO()
	require.Equal(t, 80, table.Len())

	name, err := table.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "Person - Con người", name)

	name, err = table.Lookup(79)
	require.NoError(t, err)
	assert.Equal(t, "Toothbrush - Bàn chải đánh răng", name)
}

func TestLookupOutOfRange(t *testing.T) {
	table := COCO()
	for _, id := range []int{-1, 80, 1000} {
		_, err := table.Lookup(id)
		assert.ErrorIs(t, err, ErrUnknownClass, "class id %d", id)
	}
}

func TestNewNormalizesToNFC(t *testing.T) {
	decomposed := norm.NFD.String("Cup - Cốc")
	require.NotEqual(t, "Cup - Cốc", decomposed)

	table, err := New([]string{decomposed})
	require.NoError(t, err)
	name, err := table.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "Cup - Cốc", name)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]string{"A", ""})
	assert.Error(t, err)
}

func TestNamesIsACopy(t *testing.T) {
	table := COCO()
	names := table.Names()
	names[0] = "changed"
	name, _ := table.Lookup(0)
	assert.Equal(t, "Person - Con người", name)
}

func TestRunesIncludesVietnamese(t *testing.T) {
	runes := COCO().Runes()
	assert.Contains(t, runes, 'ư')
	assert.Contains(t, runes, 'ờ')
	assert.Contains(t, runes, 'Đ')
}
