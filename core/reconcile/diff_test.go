package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	Code int
	Time int
}

func pairKey(p pair) int { return p.Code }
func pairEqual(a, b pair) bool { return a.Time == b.Time }

func TestThreeWay(t *testing.T) {
	stored := []pair{{31, 10}, {32, 20}, {33, 30}}
	incoming := []pair{{31, 10}, {32, 25}, {34, 40}}

	d := ThreeWay(stored, incoming, pairKey, pairEqual)

	assert.Equal(t, []pair{{34, 40}}, d.Create)
	assert.Equal(t, []pair{{32, 25}}, d.Update)
	assert.Equal(t, []pair{{33, 30}}, d.Delete)
	assert.Equal(t, 3, d.Changes())
	assert.False(t, d.Empty())
}

func TestThreeWay_Identical(t *testing.T) {
	set := []pair{{31, 10}, {32, 20}}
	d := ThreeWay(set, set, pairKey, pairEqual)
	assert.True(t, d.Empty())
}

func TestThreeWay_StoredDuplicatesFirstWins(t *testing.T) {
	stored := []pair{{31, 10}, {31, 99}}
	incoming := []pair{{31, 10}}

	d := ThreeWay(stored, incoming, pairKey, pairEqual)

	assert.Empty(t, d.Create)
	assert.Empty(t, d.Update)
	assert.Equal(t, []pair{{31, 99}}, d.Delete)
}

func TestThreeWay_EmptySides(t *testing.T) {
	d := ThreeWay(nil, []pair{{1, 1}}, pairKey, pairEqual)
	assert.Equal(t, []pair{{1, 1}}, d.Create)

	d = ThreeWay([]pair{{1, 1}}, nil, pairKey, pairEqual)
	assert.Equal(t, []pair{{1, 1}}, d.Delete)
}
