package flows

import (
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// FraudRefundDetection is the name of the refund fraud flow.
const FraudRefundDetection = "fraud-refund-detection"

// RefundSignals describes a refund request.
type RefundSignals struct {
	OrderValue           float64 `json:"orderValue"`
	FrequencyOfReturns   float64 `json:"frequencyOfReturns"`
	IPGeoMismatch        bool    `json:"ipGeoMismatch"`
	RapidAddressChanges  bool    `json:"rapidAddressChanges"`
	DeviceFingerprinting string  `json:"deviceFingerprinting"`
}

// FraudAssessment is the verdict on a refund request.
type FraudAssessment struct {
	IsFraudulent     bool   `json:"isFraudulent"`
	FraudExplanation string `json:"fraudExplanation"`
}

var fraudRefundDetection = flow.Definition{
	Name:        FraudRefundDetection,
	Description: "Decides whether a refund request is likely fraudulent and explains why.",
	Input: schema.MustNew(
		schema.Number("orderValue", "The total value of the order."),
		schema.Number("frequencyOfReturns", "The number of returns the user has made in the past, as a proxy for abuse of the return system."),
		schema.Boolean("ipGeoMismatch", "Whether the IP address of the refund request matches the geo-location of the shipping address."),
		schema.Boolean("rapidAddressChanges", "Whether the user has made multiple address changes in a short period."),
		schema.String("deviceFingerprinting", "The device fingerprint of the user, with as many details as possible."),
	),
	Output: schema.MustNew(
		schema.Boolean("isFraudulent", "True if the refund request is likely to be fraudulent, false otherwise."),
		schema.String("fraudExplanation", "A detailed explanation of the determination, describing each contributing factor."),
	),
	Template: `You are a fraud detection expert specializing in identifying fraudulent refund requests for an e-commerce platform.

Based on the information provided about the refund request, determine if it is likely to be fraudulent. Provide a detailed explanation supporting your determination, describing each factor contributing to the determination.

Order Value: {{.orderValue}}
Return Frequency: {{.frequencyOfReturns}}
IP/Geo Mismatch: {{.ipGeoMismatch}}
Rapid Address Changes: {{.rapidAddressChanges}}
Device Fingerprint: {{.deviceFingerprinting}}

Consider these factors when determining if the refund is fraudulent:
- High order value combined with frequent returns
- Mismatch between IP address and shipping address
- Rapid changes to the shipping address
- Suspicious device fingerprints, such as spoofed or emulated devices
- Any combination of the above factors
- Overall likelihood of fraud based on the provided information
`,
}
