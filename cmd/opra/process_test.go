package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/opra"
	main "github.com/fwojciec/opra/cmd/opra"
	"github.com/fwojciec/opra/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports chunks and tokens", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Processor: &mock.OrdinanceProcessor{
				ProcessFn: func(_ context.Context, id string) (*opra.ProcessResult, error) {
					return &opra.ProcessResult{OrdinanceID: id, ChunksCreated: 12, Tokens: 4200}, nil
				},
			},
		}

		err := (&main.ProcessCmd{OrdinanceID: "ord-1"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "Processed ordinance ord-1: 12 chunks, 4200 tokens\n", stdout.String())
	})

	t.Run("already processed", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Processor: &mock.OrdinanceProcessor{
				ProcessFn: func(_ context.Context, id string) (*opra.ProcessResult, error) {
					return &opra.ProcessResult{OrdinanceID: id, ChunksCreated: 12, AlreadyProcessed: true}, nil
				},
			},
		}

		err := (&main.ProcessCmd{OrdinanceID: "ord-1"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "already processed (12 chunks)")
	})

	t.Run("reports errors", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Processor: &mock.OrdinanceProcessor{
				ProcessFn: func(_ context.Context, _ string) (*opra.ProcessResult, error) {
					return nil, opra.Errorf(opra.ENOTFOUND, "ordinance not found")
				},
			},
		}

		err := (&main.ProcessCmd{OrdinanceID: "nope"}).Run(deps)

		assert.Equal(t, opra.ENOTFOUND, opra.ErrorCode(err))
		assert.Equal(t, "error: ordinance not found\n", stderr.String())
	})
}
