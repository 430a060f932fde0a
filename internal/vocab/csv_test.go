package vocab

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := `de,en,grade,unit,station,cloze_de,cloze_en
Haus,house,5,1,2
Hund;Köter,dog,5,1,2,Der ___ bellt.,The ___ barks.
,cat,5,1,2
Baum,tree,five,1,2
Auto,car,5,1,2,Ein rotes Auto.
`
	entries, err := ReadCSV(strings.NewReader(input))
	require.Len(t, entries, 2)
	assert.Equal(t, "Haus", entries[0].Source)
	assert.Equal(t, Course{Grade: 5, Unit: 1, Station: 2}, entries[0].Course)
	assert.Equal(t, "Der ___ bellt.", entries[1].ClozeSource)

	require.Error(t, err)
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 4, rowErr.Line)
	assert.Contains(t, err.Error(), "line 5")
	assert.Contains(t, err.Error(), "line 6")
}

func TestReadCSV_NoHeader(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader("Schule,school,6,2,1\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "school", entries[0].Target)
}

func TestReadCSV_CourseStartsAtOne(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader("Haus,house,0,1,1\nBaum,tree,5,0,1\nHund,dog,5,1,0\nMaus,mouse,5,1,1\n"))
	require.Len(t, entries, 1)
	assert.Equal(t, "Maus", entries[0].Source)

	require.Error(t, err)
	for _, line := range []string{"line 1", "line 2", "line 3"} {
		assert.Contains(t, err.Error(), line)
	}
}
