package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	tax := DefaultTaxonomy()

	assert.Equal(t, "images", tax.Category(".jpg"))
	assert.Equal(t, "images", tax.Category(".JPG"))
	assert.Equal(t, "documents", tax.Category(".pdf"))
	assert.Equal(t, "archives", tax.Category(".zip"))
	assert.Equal(t, CategoryOthers, tax.Category(".xyzzy"))
	assert.Equal(t, CategoryOthers, tax.Category(""))
}

func TestCategoryDeterministicOnOverlap(t *testing.T) {
	// A user taxonomy may claim the same extension twice; the winner must
	// not depend on map iteration order.
	tax := TypeTaxonomy{
		"scans":    {".pdf"},
		"invoices": {".pdf"},
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "invoices", tax.Category(".pdf"))
	}
}

func TestBatchHelpers(t *testing.T) {
	batch := OperationBatch{
		Files: []FileRecord{
			{Size: 100, Success: true},
			{Size: 50},
			{Size: 25, Success: true},
		},
	}
	assert.Len(t, batch.SuccessfulFiles(), 2)
	assert.Equal(t, int64(125), batch.TotalSize())
}

func TestOperationKindValid(t *testing.T) {
	assert.True(t, OpMove.Valid())
	assert.True(t, OpCopy.Valid())
	assert.True(t, OpLink.Valid())
	assert.False(t, OperationKind("shred").Valid())
	assert.False(t, OperationKind("").Valid())
}
