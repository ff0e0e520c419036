package divscan

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowBatchSize is the number of rows per record batch in an IPC stream.
const ArrowBatchSize = 1 << 20

func arrowSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: valueColumn, Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	}, nil)
}

// ============================================================================
// Arrow Export
// ============================================================================

// ToArrow exports ds as a single-column Arrow Record.
// The caller is responsible for calling Release() on the returned Record.
func ToArrow(mem memory.Allocator, ds *Dataset) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}

	builder := array.NewInt32Builder(mem)
	defer builder.Release()
	builder.AppendValues(ds.values, nil)
	arr := builder.NewArray()

	record := array.NewRecord(arrowSchema(), []arrow.Array{arr}, int64(ds.Len()))

	// Record retains the array
	arr.Release()
	return record, nil
}

// WriteArrowIPC writes ds to w in the Arrow IPC stream format, one record
// batch per ArrowBatchSize rows.
func WriteArrowIPC(w io.Writer, ds *Dataset, mem memory.Allocator) error {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	record, err := ToArrow(mem, ds)
	if err != nil {
		return err
	}
	defer record.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(record.Schema()), ipc.WithAllocator(mem))

	rows := record.NumRows()
	for start := int64(0); start < rows; start += ArrowBatchSize {
		end := start + ArrowBatchSize
		if end > rows {
			end = rows
		}
		batch := record.NewSlice(start, end)
		err := writer.Write(batch)
		batch.Release()
		if err != nil {
			writer.Close()
			return fmt.Errorf("failed to write record batch at %d: %w", start, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close ipc writer: %w", err)
	}
	return nil
}

// WriteArrowIPCFile writes ds to path in the Arrow IPC stream format
func WriteArrowIPCFile(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteArrowIPC(f, ds, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ============================================================================
// Arrow Import
// ============================================================================

// FromArrow builds a Dataset from the "value" column of an Arrow Record.
// The column must be int32, or int64 with every value in int32 range, and
// must not contain nulls.
func FromArrow(record arrow.Record) (*Dataset, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}
	values, err := appendArrowValues(make([]int32, 0, record.NumRows()), record)
	if err != nil {
		return nil, err
	}
	return wrapDataset(values), nil
}

// ReadArrowIPC reads every record batch of an Arrow IPC stream
func ReadArrowIPC(r io.Reader) (*Dataset, error) {
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open ipc stream: %w", err)
	}
	defer reader.Release()

	var values []int32
	for reader.Next() {
		values, err = appendArrowValues(values, reader.Record())
		if err != nil {
			return nil, err
		}
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read record batch: %w", err)
	}
	return wrapDataset(values), nil
}

// ReadArrowIPCFile reads an Arrow IPC stream from path
func ReadArrowIPCFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadArrowIPC(f)
}

func appendArrowValues(dst []int32, record arrow.Record) ([]int32, error) {
	indices := record.Schema().FieldIndices(valueColumn)
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: column '%s' not found in record", ErrInvalidColumn, valueColumn)
	}
	col := record.Column(indices[0])
	if col.NullN() > 0 {
		return nil, fmt.Errorf("%w: column '%s' contains %d nulls", ErrInvalidColumn, valueColumn, col.NullN())
	}

	switch a := col.(type) {
	case *array.Int32:
		return append(dst, a.Int32Values()...), nil

	case *array.Int64:
		for i, v := range a.Int64Values() {
			if v < math.MinInt32 || v > math.MaxInt32 {
				return nil, fmt.Errorf("column '%s' row %d: value %d overflows int32", valueColumn, i, v)
			}
			dst = append(dst, int32(v))
		}
		return dst, nil

	default:
		return nil, fmt.Errorf("%w: unsupported Arrow array type: %T", ErrInvalidColumn, col)
	}
}
