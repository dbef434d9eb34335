package flows

import (
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// ProductDescriptionGeneration is the name of the listing copy flow.
const ProductDescriptionGeneration = "product-description-generation"

// ProductBrief is what a seller knows about a product.
type ProductBrief struct {
	ProductName     string `json:"productName"`
	ProductCategory string `json:"productCategory"`
	KeyFeatures     string `json:"keyFeatures"`
}

// ProductCopy is generated listing text.
type ProductCopy struct {
	ProductDescription  string `json:"productDescription"`
	SuggestedCategories string `json:"suggestedCategories"`
}

var productDescriptionGeneration = flow.Definition{
	Name:        ProductDescriptionGeneration,
	Description: "Writes a product description and suggests categories from a seller's brief.",
	Input: schema.MustNew(
		schema.String("productName", "The name of the product."),
		schema.String("productCategory", "The category of the product."),
		schema.String("keyFeatures", "A list of key features of the product."),
	),
	Output: schema.MustNew(
		schema.String("productDescription", "A detailed and engaging description of the product."),
		schema.String("suggestedCategories", "A comma separated list of suggested categories for the product."),
	),
	Template: `You are an expert e-commerce product description writer.

Given the following information about a product, generate a compelling and detailed product description, and suggest categories for the product.

Product Name: {{.productName}}
Product Category: {{.productCategory}}
Key Features: {{.keyFeatures}}
`,
}
