package divscan

import (
	"testing"
)

func TestRowBatch_Reuse(t *testing.T) {
	b := getRowBatch()
	if len(b.Rows) != 0 || cap(b.Rows) < parquetBatchSize {
		t.Fatalf("expected empty batch with capacity %d, got len=%d cap=%d", parquetBatchSize, len(b.Rows), cap(b.Rows))
	}
	b.Rows = append(b.Rows, parquetRow{Value: 7})
	b.Release()
	if len(b.Rows) != 0 {
		t.Errorf("expected Release to empty the batch, got len=%d", len(b.Rows))
	}

	again := getRowBatch()
	defer again.Release()
	if len(again.Rows) != 0 {
		t.Errorf("expected pooled batch to be empty, got len=%d", len(again.Rows))
	}
}

func TestRowBatch_ReleaseWithoutPool(t *testing.T) {
	b := &rowBatch{Rows: make([]parquetRow, 3)}
	b.Release()
	if len(b.Rows) != 3 {
		t.Errorf("expected unpooled batch to be left alone, got len=%d", len(b.Rows))
	}
}
