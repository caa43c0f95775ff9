package bizctl

import (
	"encoding/json"
	"fmt"
	"time"
)

// OnboardingStatus is the subset of the status payload the CLI renders.
type OnboardingStatus struct {
	TenantID       string  `json:"tenant_id"`
	Status         string  `json:"status"`
	Template       string  `json:"template"`
	Engine         string  `json:"engine"`
	TotalSteps     int     `json:"total_steps"`
	CompletedSteps int     `json:"completed_steps"`
	SkippedSteps   int     `json:"skipped_steps"`
	Progress       float64 `json:"progress"`
	CurrentStep    *string `json:"current_step"`
	Error          *string `json:"error"`
}

// Status fetches the tenant's onboarding status.
func (c *Client) Status(tenantID string) (*OnboardingStatus, error) {
	resp, err := c.Get(fmt.Sprintf("/tenants/%s/onboarding", tenantID))
	if err != nil {
		return nil, err
	}

	var st OnboardingStatus
	if err := json.Unmarshal(resp.Body, &st); err != nil {
		return nil, fmt.Errorf("parse onboarding status: %w", err)
	}
	return &st, nil
}

// WaitForCompletion polls the tenant's onboarding status until it reaches
// a terminal state or the timeout elapses. Useful when another operator
// or process is driving the steps.
func (c *Client) WaitForCompletion(tenantID string, timeout time.Duration) (*OnboardingStatus, error) {
	deadline := time.Now().Add(timeout)

	for {
		st, err := c.Status(tenantID)
		if err != nil {
			return nil, err
		}

		switch st.Status {
		case "completed":
			return st, nil
		case "failed":
			msg := "onboarding failed"
			if st.Error != nil {
				msg = *st.Error
			}
			return st, fmt.Errorf("%s", msg)
		}

		if time.Now().After(deadline) {
			return st, fmt.Errorf("timed out after %s (status %s, %.0f%%)", timeout, st.Status, st.Progress)
		}
		time.Sleep(2 * time.Second)
	}
}
