package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSenderStripsFormatting(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw  string
		want Sender
	}{
		{raw: "15550001111", want: "15550001111"},
		{raw: "+1 555-000-1111", want: "15550001111"},
		{raw: " +44 (20) 7946.0000 ", want: "442079460000"},
		{raw: "", want: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, CanonicalSender(tc.raw), tc.raw)
	}
}

func TestAllowListContainsCanonicalNumbers(t *testing.T) {
	t.Parallel()

	list := NewAllowList("+1 555 000 1111", "", "15550002222")

	assert.Equal(t, 2, list.Len())
	assert.True(t, list.Contains("15550001111"))
	assert.True(t, list.Contains(CanonicalSender("+15550002222")))
	assert.False(t, list.Contains("15550003333"))
	assert.Equal(t, []Sender{"15550001111", "15550002222"}, list.Numbers())
}

func TestAllowListUnionLeavesOperandsUntouched(t *testing.T) {
	t.Parallel()

	base := NewAllowList("15550001111")
	extra := NewAllowList("15550002222")

	merged := base.Union(extra)

	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 1, extra.Len())
}

func TestZeroAllowListIsEmpty(t *testing.T) {
	t.Parallel()

	var list AllowList
	assert.False(t, list.Contains("15550001111"))
	assert.Empty(t, list.Numbers())
}
