package opra_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/opra"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := opra.Errorf(opra.ENOTFOUND, "ordinance %q not found", "test")

	assert.Equal(t, opra.ENOTFOUND, opra.ErrorCode(err))
	assert.Equal(t, "ordinance \"test\" not found", opra.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, opra.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, opra.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("store chunks: %w", opra.Errorf(opra.ECONFLICT, "already processing"))

	assert.Equal(t, opra.ECONFLICT, opra.ErrorCode(err))
	assert.Equal(t, "already processing", opra.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("disk full")

	assert.Equal(t, opra.EINTERNAL, opra.ErrorCode(err))
	assert.Equal(t, "Internal error", opra.ErrorMessage(err))
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical vectors", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 1.0, opra.CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0.0, opra.CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, -1.0, opra.CosineSimilarity([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	})

	t.Run("length mismatch is zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, opra.CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("zero vector is zero", func(t *testing.T) {
		t.Parallel()

		assert.Zero(t, opra.CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	})
}
