// Package bloom provides reference ID deduplication using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter keyed by document reference IDs. A hit
// means the ID was probably seen this run and the database should be
// consulted; a miss means it definitely was not.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a reference ID in the filter.
func (f *Filter) Add(referenceID string) {
	f.f.AddString(referenceID)
}

// Test returns true if the reference ID might have been added.
// False positives are possible; false negatives are not.
func (f *Filter) Test(referenceID string) bool {
	return f.f.TestString(referenceID)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
