package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagSetDeduplicates(t *testing.T) {
	s := NewTagSet(TagGeoMoscow)
	s.Add(TagGeoMoscow, TagVEDAbsent)
	s.Add(TagVEDAbsent)

	assert.Len(t, s, 2)
	assert.True(t, s.Has(TagGeoMoscow))
	assert.True(t, s.Has(TagVEDAbsent))
	assert.False(t, s.Has(TagVEDActive))
}

func TestTagSetSortedIsDeterministic(t *testing.T) {
	s := NewTagSet(TagVEDAbsent, TagCompanySizeMicro, TagGeoRegion)
	assert.Equal(t, []string{TagCompanySizeMicro, TagGeoRegion, TagVEDAbsent}, s.Sorted())
}
