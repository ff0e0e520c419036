package divscan

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Parquet
// ============================================================================

func TestParquet_Roundtrip(t *testing.T) {
	ds, err := Generate(10_000, 100_000, 5)
	require.NoError(t, err)

	for _, compression := range []string{"snappy", "gzip", "zstd", "none"} {
		t.Run(compression, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteParquetToWriter(&buf, ds, ParquetWriteOptions{Compression: compression, RowGroupSize: 3000})
			require.NoError(t, err)

			got, err := ReadParquetFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			require.NoError(t, err)
			assert.Equal(t, ds.Values(), got.Values())
		})
	}
}

func TestParquet_File(t *testing.T) {
	ds := NewDataset([]int32{19, 38, 5, 57, 100, 0})
	path := filepath.Join(t.TempDir(), "values.parquet")

	require.NoError(t, WriteParquet(path, ds))

	src, err := SourceFor(path)
	require.NoError(t, err)
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds.Values(), got.Values())

	r, err := ReduceAtomic(got, Config{Threads: 2, Divisor: 19})
	require.NoError(t, err)
	assert.Equal(t, Result{Count: 4, Min: 0}, r)
}

func TestParquet_Errors(t *testing.T) {
	err := WriteParquetToWriter(&bytes.Buffer{}, NewDataset([]int32{1}), ParquetWriteOptions{Compression: "lzma"})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ReadParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)

	garbage := []byte("definitely not parquet")
	_, err = ReadParquetFromReader(bytes.NewReader(garbage), int64(len(garbage)))
	assert.Error(t, err)
}

// writeParquetRows encodes rows with their own schema, for files divscan
// itself would never write.
func writeParquetRows[T any](t *testing.T, rows []T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf)
	_, err := w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestParquet_OptionalColumnRejected(t *testing.T) {
	type optionalRow struct {
		Value *int32 `parquet:"value,optional"`
	}
	v19, v38 := int32(19), int32(38)
	r := writeParquetRows(t, []optionalRow{{Value: &v19}, {Value: nil}, {Value: &v38}})

	_, err := ReadParquetFromReader(r, r.Size())
	assert.ErrorIs(t, err, ErrInvalidColumn)
	assert.ErrorContains(t, err, "must be required INT32")
}

func TestParquet_RepeatedColumnRejected(t *testing.T) {
	type repeatedRow struct {
		Value []int32 `parquet:"value"`
	}
	r := writeParquetRows(t, []repeatedRow{{Value: []int32{19, 38}}})

	_, err := ReadParquetFromReader(r, r.Size())
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestParquet_MissingColumn(t *testing.T) {
	type otherRow struct {
		Other int32 `parquet:"other"`
	}
	r := writeParquetRows(t, []otherRow{{Other: 19}})

	_, err := ReadParquetFromReader(r, r.Size())
	assert.ErrorIs(t, err, ErrInvalidColumn)
	assert.ErrorContains(t, err, "not found")
}

func TestParquet_WrongColumnType(t *testing.T) {
	type int64Row struct {
		Value int64 `parquet:"value"`
	}
	r := writeParquetRows(t, []int64Row{{Value: 19}})

	_, err := ReadParquetFromReader(r, r.Size())
	assert.ErrorIs(t, err, ErrInvalidColumn)
	assert.ErrorContains(t, err, "want INT32")
}

// ============================================================================
// Arrow
// ============================================================================

func TestArrow_Export(t *testing.T) {
	ds := NewDataset([]int32{1, 2, 3})

	record, err := ToArrow(memory.DefaultAllocator, ds)
	require.NoError(t, err)
	defer record.Release()

	assert.Equal(t, int64(3), record.NumRows())
	assert.Equal(t, int64(1), record.NumCols())
	assert.Equal(t, valueColumn, record.Schema().Field(0).Name)

	back, err := FromArrow(record)
	require.NoError(t, err)
	assert.Equal(t, ds.Values(), back.Values())
}

func TestArrow_FromInt64(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	builder := array.NewInt64Builder(mem)
	builder.AppendValues([]int64{19, -38, 7}, nil)
	arr := builder.NewArray()
	builder.Release()

	schema := arrow.NewSchema([]arrow.Field{{Name: valueColumn, Type: arrow.PrimitiveTypes.Int64}}, nil)
	record := array.NewRecord(schema, []arrow.Array{arr}, 3)
	arr.Release()
	defer record.Release()

	ds, err := FromArrow(record)
	require.NoError(t, err)
	assert.Equal(t, []int32{19, -38, 7}, ds.Values())
}

func TestArrow_FromArrowErrors(t *testing.T) {
	_, err := FromArrow(nil)
	assert.Error(t, err)

	mem := memory.DefaultAllocator

	// int64 out of int32 range
	b64 := array.NewInt64Builder(mem)
	b64.AppendValues([]int64{1 << 40}, nil)
	big := b64.NewArray()
	b64.Release()
	schema := arrow.NewSchema([]arrow.Field{{Name: valueColumn, Type: arrow.PrimitiveTypes.Int64}}, nil)
	rec := array.NewRecord(schema, []arrow.Array{big}, 1)
	big.Release()
	_, err = FromArrow(rec)
	rec.Release()
	assert.Error(t, err)

	// nulls
	b32 := array.NewInt32Builder(mem)
	b32.Append(1)
	b32.AppendNull()
	withNull := b32.NewArray()
	b32.Release()
	schema = arrow.NewSchema([]arrow.Field{{Name: valueColumn, Type: arrow.PrimitiveTypes.Int32, Nullable: true}}, nil)
	rec = array.NewRecord(schema, []arrow.Array{withNull}, 2)
	withNull.Release()
	_, err = FromArrow(rec)
	rec.Release()
	assert.ErrorIs(t, err, ErrInvalidColumn)

	// wrong column name
	b32 = array.NewInt32Builder(mem)
	b32.Append(1)
	other := b32.NewArray()
	b32.Release()
	schema = arrow.NewSchema([]arrow.Field{{Name: "other", Type: arrow.PrimitiveTypes.Int32}}, nil)
	rec = array.NewRecord(schema, []arrow.Array{other}, 1)
	other.Release()
	_, err = FromArrow(rec)
	rec.Release()
	assert.Error(t, err)
}

func TestArrow_IPCRoundtrip(t *testing.T) {
	// More than one record batch
	ds, err := Generate(ArrowBatchSize+123, 100_000, 11)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteArrowIPC(&buf, ds, nil))

	got, err := ReadArrowIPC(&buf)
	require.NoError(t, err)
	require.Equal(t, ds.Len(), got.Len())
	assert.Equal(t, ds.Values(), got.Values())
}

func TestArrow_IPCFile(t *testing.T) {
	ds := NewDataset([]int32{1, 2, 3, 4, 5})
	path := filepath.Join(t.TempDir(), "values.arrow")

	require.NoError(t, WriteArrowIPCFile(path, ds))

	src, err := SourceFor(path)
	require.NoError(t, err)
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ds.Values(), got.Values())

	r, err := ReduceMutex(got, Config{Threads: 3, Divisor: 19})
	require.NoError(t, err)
	assert.False(t, r.Found())
}

func TestArrow_IPCEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArrowIPC(&buf, NewDataset(nil), nil))

	got, err := ReadArrowIPC(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}
