package amqp

import (
	"encoding/json"
	"time"

	"bilancio/internal/forecast"
)

// ForecastComputedMessage announces a freshly computed month-end
// forecast. It carries the headline numbers only; consumers needing
// the full projection fetch it from the API.
type ForecastComputedMessage struct {
	Year                int       `json:"year"`
	Month               int       `json:"month"`
	Day                 int       `json:"day"`
	ProjectedEndOfMonth float64   `json:"projectedEndOfMonthBalance"`
	ProjectedTotalSpend float64   `json:"projectedTotalSpend"`
	FreeToSpend         float64   `json:"freeToSpend"`
	WillExceedBudget    bool      `json:"willExceedBudget"`
	Confidence          int       `json:"confidencePercent"`
	Timestamp           time.Time `json:"timestamp"`
}

// NewForecastComputedMessage extracts the headline numbers from a
// prediction result.
func NewForecastComputedMessage(result forecast.PredictionResult) *ForecastComputedMessage {
	return &ForecastComputedMessage{
		Year:                result.Year,
		Month:               result.Month,
		Day:                 result.Day,
		ProjectedEndOfMonth: result.ProjectedEndOfMonth,
		ProjectedTotalSpend: result.ProjectedTotalSpend,
		FreeToSpend:         result.FreeToSpend,
		WillExceedBudget:    result.WillExceedBudget,
		Confidence:          result.Confidence,
		Timestamp:           time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ForecastComputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ForecastComputedMessageFromJSON creates a message from JSON bytes.
func ForecastComputedMessageFromJSON(data []byte) (*ForecastComputedMessage, error) {
	var msg ForecastComputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
