package flows

import (
	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// DeliveryDelayPrediction is the name of the shipment delay flow.
const DeliveryDelayPrediction = "delivery-delay-prediction"

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Shipment is the live state of one delivery.
type Shipment struct {
	OrderID               string   `json:"orderId"`
	AssignedAgent         string   `json:"assignedAgent"`
	CurrentStatus         string   `json:"currentStatus"`
	Location              GeoPoint `json:"location"`
	DeliveryAddress       string   `json:"deliveryAddress"`
	EstimatedDeliveryTime string   `json:"estimatedDeliveryTime"`
}

// DeliveryConditions pairs a shipment with the conditions around it.
type DeliveryConditions struct {
	ShipmentData          Shipment `json:"shipmentData"`
	HistoricalWeatherData string   `json:"historicalWeatherData"`
	TrafficConditions     string   `json:"trafficConditions"`
}

// DelayForecast is the predicted outcome of a delivery.
type DelayForecast struct {
	IsDelayed                bool   `json:"isDelayed"`
	DelayReason              string `json:"delayReason"`
	OptimizedRoute           string `json:"optimizedRoute"`
	NewEstimatedDeliveryTime string `json:"newEstimatedDeliveryTime"`
}

var deliveryDelayPrediction = flow.Definition{
	Name:        DeliveryDelayPrediction,
	Description: "Predicts whether a shipment will be late and proposes a faster route.",
	Input: schema.MustNew(
		schema.Object("shipmentData", "Shipment data including order ID, agent ID, status, location, delivery address and estimated delivery time.",
			schema.String("orderId", "The ID of the order."),
			schema.String("assignedAgent", "The ID of the assigned delivery agent."),
			schema.String("currentStatus", "The current status of the shipment (e.g., out for delivery, in transit)."),
			schema.Object("location", "The current location of the shipment.",
				schema.Number("latitude", "The latitude of the current location."),
				schema.Number("longitude", "The longitude of the current location."),
			),
			schema.String("deliveryAddress", "The full delivery address."),
			schema.String("estimatedDeliveryTime", "The estimated delivery time in ISO format."),
		),
		schema.String("historicalWeatherData", "Historical weather data for the delivery area."),
		schema.String("trafficConditions", "Current traffic conditions in the delivery area."),
	),
	Output: schema.MustNew(
		schema.Boolean("isDelayed", "Whether the delivery is predicted to be delayed."),
		schema.String("delayReason", "The reason for the predicted delay."),
		schema.String("optimizedRoute", "A description of the optimized route to avoid the delay."),
		schema.String("newEstimatedDeliveryTime", "The new estimated delivery time if the optimized route is taken."),
	),
	Template: `You are an expert logistics analyst specializing in predicting delivery delays and optimizing routes.

You will use the provided shipment data, historical weather data, and current traffic conditions to predict if a delivery will be delayed.

If a delay is predicted, provide a reason for the delay and an optimized route to avoid it, along with a new estimated delivery time.

Shipment Data:
{{json .shipmentData}}

Historical Weather Data:
{{.historicalWeatherData}}

Current Traffic Conditions:
{{.trafficConditions}}

Consider the following factors when predicting delays:
- Distance to the delivery location
- Weather conditions (rain, snow, fog, etc.)
- Traffic congestion
- Road closures
`,
}
