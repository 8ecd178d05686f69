package main

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 130, exitCode(errors.Wrap(context.Canceled, "watch")))
	assert.Equal(t, 130, exitCode(errors.WithHint(errors.Wrapf(context.Canceled, "render %s", "a.mmd"), "retry")))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(context.DeadlineExceeded))
}
