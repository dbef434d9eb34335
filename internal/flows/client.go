package flows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

// Client calls the built-in flows with typed inputs and outputs. Failures
// are returned as *flow.ErrorDetail.
type Client struct {
	runner *flow.Runner
}

// NewClient wraps r.
func NewClient(r *flow.Runner) *Client {
	return &Client{runner: r}
}

// DetectFraudulentRefund assesses a refund request.
func (c *Client) DetectFraudulentRefund(ctx context.Context, in RefundSignals) (FraudAssessment, error) {
	var out FraudAssessment
	err := c.call(ctx, FraudRefundDetection, in, &out)
	return out, err
}

// GenerateProductDescription writes listing copy for a product.
func (c *Client) GenerateProductDescription(ctx context.Context, in ProductBrief) (ProductCopy, error) {
	var out ProductCopy
	err := c.call(ctx, ProductDescriptionGeneration, in, &out)
	return out, err
}

// PredictDeliveryDelays forecasts whether a shipment will be late.
func (c *Client) PredictDeliveryDelays(ctx context.Context, in DeliveryConditions) (DelayForecast, error) {
	var out DelayForecast
	err := c.call(ctx, DeliveryDelayPrediction, in, &out)
	return out, err
}

// RecommendProducts suggests products for a shopper.
func (c *Client) RecommendProducts(ctx context.Context, in ShopperHistory) (Recommendations, error) {
	var out Recommendations
	err := c.call(ctx, ProductRecommendations, in, &out)
	return out, err
}

// SuggestCampaignOptimizations proposes new discounts for a campaign.
func (c *Client) SuggestCampaignOptimizations(ctx context.Context, in CampaignSnapshot) (CampaignAdvice, error) {
	var out CampaignAdvice
	err := c.call(ctx, CampaignOptimization, in, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, name string, in, out any) error {
	raw, err := toMap(in)
	if err != nil {
		return fmt.Errorf("encode %s input: %w", name, err)
	}
	res := c.runner.Invoke(ctx, name, raw)
	if d := res.Err(); d != nil {
		return d
	}
	value, _ := res.Output()
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s output: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s output: %w", name, err)
	}
	return nil
}

// toMap round-trips v through JSON so struct tags decide field names.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
