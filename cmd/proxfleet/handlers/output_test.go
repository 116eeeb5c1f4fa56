package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutput_UnknownFormatFails(t *testing.T) {
	testFixtures(t)

	err := Output(context.Background(), OutputOptions{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestOutput_TableAfterApply(t *testing.T) {
	testFixtures(t)
	require.NoError(t, Apply(context.Background(), applyOpts()))

	assert.NoError(t, Output(context.Background(), OutputOptions{Format: "table"}))
}

func TestOutput_JSONOnEmptyState(t *testing.T) {
	testFixtures(t)

	assert.NoError(t, Output(context.Background(), OutputOptions{Format: "json"}))
}
