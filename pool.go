package divscan

import (
	"sync"
)

// parquetBatchSize is the number of rows moved per Parquet read or write call.
const parquetBatchSize = 4096

// rowBatch is a pooled row buffer for Parquet reads and writes.
// Call Release() when done to return it to the pool
type rowBatch struct {
	Rows []parquetRow
	pool *sync.Pool
}

// Release returns the batch to the pool for reuse
func (b *rowBatch) Release() {
	if b.pool != nil && b.Rows != nil {
		b.Rows = b.Rows[:0]
		b.pool.Put(b)
	}
}

var rowBatchPool = &sync.Pool{
	New: func() interface{} {
		return &rowBatch{
			Rows: make([]parquetRow, 0, parquetBatchSize),
		}
	},
}

// getRowBatch gets an empty batch with parquetBatchSize capacity from the pool
func getRowBatch() *rowBatch {
	b := rowBatchPool.Get().(*rowBatch)
	b.pool = rowBatchPool
	b.Rows = b.Rows[:0]
	return b
}
