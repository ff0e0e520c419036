package divscan

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// valueColumn is the column name used by every file format.
const valueColumn = "value"

// ErrInvalidColumn is returned when a file's "value" column is missing,
// has the wrong type, or may hold nulls.
var ErrInvalidColumn = errors.New("invalid value column")

// parquetRow is the on-disk row layout: one required INT32 column.
type parquetRow struct {
	Value int32 `parquet:"value"`
}

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression  string // "snappy", "gzip", "zstd", "none" (default "snappy")
	RowGroupSize int64  // Rows per row group (default 1000000)
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{
		Compression:  "snappy",
		RowGroupSize: 1000000,
	}
}

// ============================================================================
// Parquet Import
// ============================================================================

// ReadParquet reads the "value" column of a Parquet file into a Dataset
func ReadParquet(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size())
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a Dataset
func ReadParquetFromReader(r io.ReaderAt, size int64) (*Dataset, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	leaf, ok := pf.Schema().Lookup(valueColumn)
	if !ok {
		return nil, fmt.Errorf("%w: column '%s' not found in parquet file", ErrInvalidColumn, valueColumn)
	}
	if kind := leaf.Node.Type().Kind(); kind != parquet.Int32 {
		return nil, fmt.Errorf("%w: column '%s' has type %s, want INT32", ErrInvalidColumn, valueColumn, kind)
	}
	// Nulls would decode as 0 and count as multiples of any divisor.
	if leaf.Node.Optional() || leaf.Node.Repeated() {
		return nil, fmt.Errorf("%w: column '%s' must be required INT32", ErrInvalidColumn, valueColumn)
	}

	reader := parquet.NewGenericReader[parquetRow](io.NewSectionReader(r, 0, size))
	defer reader.Close()

	values := make([]int32, 0, pf.NumRows())
	batch := getRowBatch()
	defer batch.Release()
	rowBuf := batch.Rows[:parquetBatchSize]
	for {
		n, err := reader.Read(rowBuf)
		for _, row := range rowBuf[:n] {
			values = append(values, row.Value)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return wrapDataset(values), nil
}

// ============================================================================
// Parquet Export
// ============================================================================

// WriteParquet writes ds to a Parquet file
func WriteParquet(path string, ds *Dataset, opts ...ParquetWriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteParquetToWriter(f, ds, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteParquetToWriter writes ds to an io.Writer
func WriteParquetToWriter(w io.Writer, ds *Dataset, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	var writerOpts []parquet.WriterOption
	switch opt.Compression {
	case "", "snappy":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	case "none":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Uncompressed))
	default:
		return fmt.Errorf("%w: parquet compression %q", ErrUnknownFormat, opt.Compression)
	}
	if opt.RowGroupSize > 0 {
		writerOpts = append(writerOpts, parquet.MaxRowsPerRowGroup(opt.RowGroupSize))
	}

	pw := parquet.NewGenericWriter[parquetRow](w, writerOpts...)

	batch := getRowBatch()
	defer batch.Release()
	rows := batch.Rows
	for i := 0; i < ds.Len(); i++ {
		rows = append(rows, parquetRow{Value: ds.At(i)})

		if len(rows) == parquetBatchSize {
			if _, err := pw.Write(rows); err != nil {
				pw.Close()
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
	}

	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			pw.Close()
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
