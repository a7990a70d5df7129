package eligibility

import (
	"context"
	"fmt"

	"mise/pkg/client"
	apperrors "mise/pkg/errors"
	"mise/pkg/logger"
)

// Checker answers whether a chef may book a given kitchen. The decision
// itself (verification status, manager approval lists) lives in an external
// service; this package only transports the verdict.
type Checker interface {
	Check(ctx context.Context, chefID, kitchenID string) error
}

type httpChecker struct {
	client *client.HttpClient
	log    *logger.Logger
}

func NewHTTPChecker(baseURL string, log *logger.Logger) Checker {
	return &httpChecker{
		client: client.NewHttpClient(baseURL),
		log:    log,
	}
}

type eligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Check fails closed: a transport error or a malformed answer denies the
// booking rather than letting an unverifiable chef through.
func (c *httpChecker) Check(ctx context.Context, chefID, kitchenID string) error {
	path := fmt.Sprintf("/api/v1/eligibility?chef_id=%s&kitchen_id=%s", chefID, kitchenID)

	resp, err := c.client.GET(ctx, path)
	if err != nil {
		c.log.Warn("Eligibility service unreachable, denying booking", "chef_id", chefID, "kitchen_id", kitchenID, "error", err)
		return apperrors.NotEligible(chefID, kitchenID)
	}

	if resp.StatusCode != 200 {
		c.log.Warn("Eligibility service returned non-OK status, denying booking", "chef_id", chefID, "kitchen_id", kitchenID, "status", resp.StatusCode)
		return apperrors.NotEligible(chefID, kitchenID)
	}

	var result eligibilityResponse
	if err := resp.DecodeJSON(&result); err != nil {
		c.log.Warn("Eligibility response malformed, denying booking", "chef_id", chefID, "kitchen_id", kitchenID, "error", err)
		return apperrors.NotEligible(chefID, kitchenID)
	}

	if !result.Eligible {
		c.log.Info("Chef not eligible for kitchen", "chef_id", chefID, "kitchen_id", kitchenID, "reason", result.Reason)
		return apperrors.NotEligible(chefID, kitchenID)
	}

	return nil
}
