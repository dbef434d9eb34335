package flows

import (
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// ProductRecommendations is the name of the recommendation flow.
const ProductRecommendations = "product-recommendations"

// ShopperHistory is what is known about a shopper. Both histories are
// optional and omitted from the request when nil.
type ShopperHistory struct {
	UserID          string   `json:"userId"`
	BrowsingHistory []string `json:"browsingHistory,omitempty"`
	PurchaseHistory []string `json:"purchaseHistory,omitempty"`
}

// Recommendations lists product IDs to show a shopper.
type Recommendations struct {
	RecommendedProductIDs []string `json:"recommendedProductIds"`
}

var productRecommendations = flow.Definition{
	Name:        ProductRecommendations,
	Description: "Recommends product IDs from a shopper's browsing and purchase history.",
	Input: schema.MustNew(
		schema.String("userId", "The ID of the user for whom to provide recommendations."),
		schema.ArrayOf("browsingHistory", "The user history of browsed product IDs.",
			schema.String("", "A browsed product ID.")).Optional(),
		schema.ArrayOf("purchaseHistory", "The user history of purchased product IDs.",
			schema.String("", "A purchased product ID.")).Optional(),
	),
	Output: schema.MustNew(
		schema.ArrayOf("recommendedProductIds", "The list of recommended product IDs.",
			schema.String("", "A recommended product ID.")),
	),
	Template: `You are an e-commerce recommendation expert.

Based on the user's browsing history: {{with .browsingHistory}}{{.}}{{else}}none{{end}}
and purchase history: {{with .purchaseHistory}}{{.}}{{else}}none{{end}},
recommend a list of product IDs that the user might be interested in. The user ID is: {{.userId}}.
Use the field descriptions to inform your output.
`,
}
