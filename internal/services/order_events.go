package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/models"
)

const orderPlacedEventType = "order.placed"

// OrderPlacedEvent is published once an order has been committed.
type OrderPlacedEvent struct {
	Type          string            `json:"type"`
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	UserID        *uuid.UUID        `json:"user_id,omitempty"`
	CustomerEmail string            `json:"customer_email"`
	PaymentMethod string            `json:"payment_method"`
	Subtotal      int64             `json:"subtotal"`
	Discount      int64             `json:"discount"`
	Total         int64             `json:"total"`
	Currency      string            `json:"currency"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	Items         []OrderPlacedItem `json:"items"`
	PlacedAt      time.Time         `json:"placed_at"`
}

type OrderPlacedItem struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
	UnitPrice int64      `json:"unit_price"`
}

// NewOrderPlacedEvent builds the event payload for a persisted order.
func NewOrderPlacedEvent(order *models.Order) OrderPlacedEvent {
	items := make([]OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderPlacedItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return OrderPlacedEvent{
		Type:          orderPlacedEventType,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		CustomerEmail: order.CustomerEmail,
		PaymentMethod: string(order.PaymentMethod),
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Total:         order.Total,
		Currency:      order.Currency,
		CouponCode:    order.CouponCode,
		Items:         items,
		PlacedAt:      order.PlacedAt,
	}
}

// OrderEventPublisher delivers order lifecycle events to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
	Close() error
}

// NopOrderPublisher drops every event; used when no broker is configured.
type NopOrderPublisher struct{}

func (NopOrderPublisher) PublishOrderPlaced(context.Context, OrderPlacedEvent) error { return nil }
func (NopOrderPublisher) Close() error                                              { return nil }

// KafkaOrderPublisher publishes order events with a Sarama sync producer.
type KafkaOrderPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaOrderPublisher connects a sync producer to brokers.
func NewKafkaOrderPublisher(brokers []string, topic string) (*KafkaOrderPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start Sarama producer: %w", err)
	}

	log.Printf("[Kafka] producer connected to %v", brokers)
	return NewKafkaOrderPublisherWithProducer(producer, topic), nil
}

// NewKafkaOrderPublisherWithProducer wraps an existing producer.
func NewKafkaOrderPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{producer: producer, topic: topic}
}

// PublishOrderPlaced sends the event keyed by order id, so events of one order stay ordered.
func (p *KafkaOrderPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID.String()),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		log.Printf("[Kafka] failed to publish %s for order %s: %v", event.Type, event.OrderID, err)
		return err
	}
	log.Printf("[Kafka] %s for order %s -> %s[%d]@%d", event.Type, event.OrderID, p.topic, partition, offset)
	return nil
}

func (p *KafkaOrderPublisher) Close() error {
	return p.producer.Close()
}
