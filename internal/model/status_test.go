package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusConstants(t *testing.T) {
	assert.Equal(t, "not_provisioned", ProvisioningNotProvisioned)
	assert.Equal(t, "provisioning", ProvisioningInProgress)
	assert.Equal(t, "provisioned", ProvisioningProvisioned)
	assert.Equal(t, "failed", ProvisioningFailed)
}

func TestProcessActive(t *testing.T) {
	assert.True(t, ProcessActive(ProcessDraft))
	assert.True(t, ProcessActive(ProcessInProgress))
	assert.False(t, ProcessActive(ProcessPaused))
	assert.False(t, ProcessActive(ProcessCompleted))
	assert.False(t, ProcessActive(ProcessFailed))
}

func TestProcessTerminal(t *testing.T) {
	assert.True(t, ProcessTerminal(ProcessCompleted))
	assert.True(t, ProcessTerminal(ProcessFailed))
	assert.False(t, ProcessTerminal(ProcessDraft))
	assert.False(t, ProcessTerminal(ProcessInProgress))
	assert.False(t, ProcessTerminal(ProcessPaused))
}

func TestStepDone(t *testing.T) {
	assert.True(t, StepDone(StepCompleted))
	assert.True(t, StepDone(StepSkipped))
	assert.False(t, StepDone(StepPending))
	assert.False(t, StepDone(StepInProgress))
	assert.False(t, StepDone(StepFailed))
}
