package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dimaswi/pos-sub002/internal/infra"

	"github.com/rs/zerolog/log"
)

// StockAlertPayload is the job envelope sent to QueueStockAlert whenever a
// settlement or shipment pushes a store's balance to or below its minimum.
type StockAlertPayload struct {
	StoreID      string `json:"store_id"`
	ProductID    string `json:"product_id"`
	Quantity     int    `json:"quantity"`
	MinimumStock int    `json:"minimum_stock"`
}

// StockAlertWorker mails low-stock notifications to the configured
// purchasing address. Sends go through the circuit breaker so a downed
// mail server does not stall the pool.
type StockAlertWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	to     string
}

func NewStockAlertWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, to string) *StockAlertWorker {
	return &StockAlertWorker{mailer: mailer, cb: cb, to: to}
}

func (w *StockAlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload StockAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_alert: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if w.to == "" {
		log.Warn().Msg("stock_alert: no alert email configured, skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: product %s at store %s", payload.ProductID, payload.StoreID)
	body := fmt.Sprintf(
		"Product %s at store %s is down to %d units (minimum %d). Consider restocking.",
		payload.ProductID, payload.StoreID, payload.Quantity, payload.MinimumStock)

	err := w.cb.Execute(func() error {
		return w.mailer.SendAlert(w.to, subject, body)
	})
	if err != nil {
		log.Error().Err(err).
			Str("product_id", payload.ProductID).
			Str("store_id", payload.StoreID).
			Msg("stock_alert: failed to send alert")
		return err
	}

	log.Info().
		Str("product_id", payload.ProductID).
		Str("store_id", payload.StoreID).
		Int("quantity", payload.Quantity).
		Msg("stock_alert: alert sent")
	return nil
}
