package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	items := Sample()

	assert.Len(t, Filter(items, ""), 3)
	assert.Len(t, Filter(items, "   "), 3)

	got := Filter(items, "SOIL")
	if assert.Len(t, got, 1) {
		assert.Equal(t, "soil-health", got[0].ID.String())
	}

	assert.Len(t, Filter(items, "central"), 2, "category is searchable")
	assert.Empty(t, Filter(items, "fisheries"))
}

func TestFind(t *testing.T) {
	items := Sample()

	rec, ok := Find(items, "crop-ins")
	assert.True(t, ok)
	assert.Equal(t, "Crop Insurance (Demo)", rec.Title)

	_, ok = Find(items, "missing")
	assert.False(t, ok)
}

func TestSample(t *testing.T) {
	a := Sample()
	b := Sample()

	assert.Len(t, a, 3)
	assert.Equal(t, a, b)
	assert.Equal(t, "https://pmkisan.gov.in", a[0].ApplyURL)
	assert.Empty(t, a[1].ApplyURL)

	a[0].Title = "mutated"
	assert.Equal(t, "PM-Kisan Samman Nidhi", Sample()[0].Title)
}
