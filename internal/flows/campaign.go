package flows

import (
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// CampaignOptimization is the name of the discount tuning flow.
const CampaignOptimization = "campaign-optimization"

// CampaignSnapshot summarizes a running campaign.
type CampaignSnapshot struct {
	CampaignPerformanceData string `json:"campaignPerformanceData"`
	CurrentDiscounts        string `json:"currentDiscounts"`
}

// CampaignAdvice is a suggested change to a campaign's discounts.
type CampaignAdvice struct {
	SuggestedDiscounts string `json:"suggestedDiscounts"`
	Rationale          string `json:"rationale"`
}

var campaignOptimization = flow.Definition{
	Name:        CampaignOptimization,
	Description: "Suggests better discounts for a campaign from its performance data.",
	Input: schema.MustNew(
		schema.String("campaignPerformanceData", "Campaign performance data including metrics like views, clicks, and conversions."),
		schema.String("currentDiscounts", "A description of the discounts currently used in the campaign."),
	),
	Output: schema.MustNew(
		schema.String("suggestedDiscounts", "AI-suggested discounts to optimize campaign performance."),
		schema.String("rationale", "Explanation of why the suggested discounts are expected to improve performance."),
	),
	Template: `You are an AI marketing expert tasked with optimizing e-commerce campaigns.

Analyze the provided campaign performance data and current discounts, then suggest improved discounts.
Explain the rationale behind your suggestions.

Campaign Performance Data: {{.campaignPerformanceData}}
Current Discounts: {{.currentDiscounts}}
`,
}
