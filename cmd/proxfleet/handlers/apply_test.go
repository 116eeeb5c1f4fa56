package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyOpts() ApplyOptions {
	return ApplyOptions{AutoApprove: true, Plain: true}
}

func TestApply_CreatesFleet(t *testing.T) {
	_, fake := testFixtures(t)

	require.NoError(t, Apply(context.Background(), applyOpts()))

	assert.Equal(t, 3, fake.CallCount("clone"))
	for vmid := 201; vmid <= 203; vmid++ {
		vm := fake.VM(vmid)
		require.NotNil(t, vm)
		assert.True(t, vm.Running())
	}
}

func TestApply_SecondRunMakesNoChanges(t *testing.T) {
	_, fake := testFixtures(t)

	require.NoError(t, Apply(context.Background(), applyOpts()))
	require.NoError(t, Apply(context.Background(), applyOpts()))

	assert.Equal(t, 3, fake.CallCount("clone"))
}

func TestApply_ConflictWithoutRepairFails(t *testing.T) {
	_, fake := testFixtures(t)
	require.NoError(t, Apply(context.Background(), applyOpts()))

	fake.RemoveVM(202)

	err := Apply(context.Background(), applyOpts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--repair")
	assert.Equal(t, 3, fake.CallCount("clone"), "conflicted node must not be re-created silently")
}

func TestApply_RepairRecreatesDeletedNode(t *testing.T) {
	_, fake := testFixtures(t)
	require.NoError(t, Apply(context.Background(), applyOpts()))

	fake.RemoveVM(202)

	opts := applyOpts()
	opts.Repair = true
	require.NoError(t, Apply(context.Background(), opts))

	vm := fake.VM(202)
	require.NotNil(t, vm)
	assert.Equal(t, "homelab-02", vm.Name)
}
