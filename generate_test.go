package divscan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	ds, err := Generate(10_000, 100, 1)
	require.NoError(t, err)
	require.Equal(t, 10_000, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		v := ds.At(i)
		if v < 0 || v >= 100 {
			t.Fatalf("value %d at index %d is outside [0, 100)", v, i)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(1000, 100_000, 42)
	require.NoError(t, err)
	b, err := Generate(1000, 100_000, 42)
	require.NoError(t, err)
	c, err := Generate(1000, 100_000, 43)
	require.NoError(t, err)

	assert.Equal(t, a.Values(), b.Values())
	assert.NotEqual(t, a.Values(), c.Values())
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(-1, 10, 1)
	assert.ErrorIs(t, err, ErrNegativeLength)

	_, err = Generate(10, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidRange)

	ds, err := Generate(0, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestGenerateParallel(t *testing.T) {
	ctx := context.Background()

	seq, err := Generate(5000, 1000, 9)
	require.NoError(t, err)
	one, err := GenerateParallel(ctx, 5000, 1000, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, seq.Values(), one.Values(), "one worker should match Generate")

	a, err := GenerateParallel(ctx, 5000, 1000, 9, 8)
	require.NoError(t, err)
	b, err := GenerateParallel(ctx, 5000, 1000, 9, 8)
	require.NoError(t, err)
	assert.Equal(t, a.Values(), b.Values())
	assert.Equal(t, 5000, a.Len())

	for _, v := range a.Values() {
		require.True(t, v >= 0 && v < 1000, "value %d out of range", v)
	}
}

func TestGenerateParallel_MoreWorkersThanValues(t *testing.T) {
	ds, err := GenerateParallel(context.Background(), 3, 10, 1, 16)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}

func TestGenerateParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateParallel(ctx, 1000, 10, 1, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRandomSource(t *testing.T) {
	src := RandomSource{Size: 100, MaxValue: 50, Seed: 3}
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, ds.Len())
	assert.Contains(t, src.Describe(), "size=100")

	src.Workers = 4
	par, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, par.Len())
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor("data/input.parquet")
	require.NoError(t, err)
	assert.IsType(t, ParquetSource{}, src)

	src, err = SourceFor("input.ARROW")
	require.NoError(t, err)
	assert.IsType(t, ArrowSource{}, src)

	_, err = SourceFor("input.csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
