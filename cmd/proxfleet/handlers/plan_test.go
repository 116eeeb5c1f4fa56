package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxfleet/proxfleet/internal/config"
)

func TestPlan_FreshFleetSucceeds(t *testing.T) {
	_, fake := testFixtures(t)

	require.NoError(t, Plan(context.Background(), ""))

	assert.Equal(t, 1, fake.CallCount("list"))
	assert.Zero(t, fake.CallCount("clone"), "plan must not change anything")
}

func TestPlan_ConfigErrorPropagates(t *testing.T) {
	testFixtures(t)
	loadConfigFile = func(string) (*config.Config, error) {
		return nil, errors.New("fleet name is required")
	}

	err := Plan(context.Background(), "broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fleet name is required")
}

func TestPlan_ProviderErrorPropagates(t *testing.T) {
	_, fake := testFixtures(t)
	fake.FailOn["list"] = errors.New("connection refused")

	err := Plan(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planning failed")
}
