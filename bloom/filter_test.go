package bloom_test

import (
	"fmt"
	"testing"

	"github.com/civdoc/civdoc/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.False(t, f.Test("10-post-citoyen"))

	f.Add("10-post-citoyen")

	assert.True(t, f.Test("10-post-citoyen"))
	assert.False(t, f.Test("11-post-citoyen"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("10-post-citoyen")
	f.Add("311-fiche")
	f.Add("21-taxe")

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_AddIsIdempotent(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	f.Add("10-post-citoyen")
	countAfterFirst := f.EstimatedCount()

	f.Add("10-post-citoyen")
	f.Add("10-post-citoyen")

	assert.Equal(t, countAfterFirst, f.EstimatedCount())
}

func TestFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(10000, 0.01)

	ids := make([]string, 1000)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d-post-citoyen", i)
		f.Add(ids[i])
	}

	for _, id := range ids {
		assert.True(t, f.Test(id), "added ID %s must test positive", id)
	}
}
