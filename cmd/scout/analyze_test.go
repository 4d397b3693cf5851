package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/scout/internal/types"
)

func TestSortedByConfidenceOrdersDisplayCopy(t *testing.T) {
	related := []types.RelatedWork{
		{Item: &types.WorkItem{ID: "a"}, Confidence: 0.6},
		{Item: &types.WorkItem{ID: "b"}, Confidence: 0.9},
		{Item: &types.WorkItem{ID: "c"}, Confidence: 0.75},
	}

	sorted := sortedByConfidence(related)

	assert.Equal(t, "b", sorted[0].Item.ID)
	assert.Equal(t, "c", sorted[1].Item.ID)
	assert.Equal(t, "a", sorted[2].Item.ID)

	// Input keeps its original order.
	assert.Equal(t, "a", related[0].Item.ID)
	assert.Equal(t, "b", related[1].Item.ID)
	assert.Equal(t, "c", related[2].Item.ID)
}

func TestSortedByConfidenceStableOnTies(t *testing.T) {
	related := []types.RelatedWork{
		{Item: &types.WorkItem{ID: "first"}, Confidence: 0.8},
		{Item: &types.WorkItem{ID: "second"}, Confidence: 0.8},
	}

	sorted := sortedByConfidence(related)
	assert.Equal(t, "first", sorted[0].Item.ID)
	assert.Equal(t, "second", sorted[1].Item.ID)
}
