package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/VladisB/cosmarket/internal/config"
	"github.com/VladisB/cosmarket/internal/domain"
)

const topic = "notifications"

const publishTimeout = time.Second * 10

// Event is the message handed to the external notification dispatcher. The
// dispatcher owns SMS/email delivery; this service only publishes.
type Event struct {
	Event       string `json:"event"`
	OrderSlug   string `json:"order_slug,omitempty"`
	ItemSlug    string `json:"item_slug,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Service dispatches notification events after commit, fire-and-forget:
// publish failures are logged and never surface to the caller.
type Service struct {
	writer     Writer
	workerPool WorkerPoolI
}

func New(cfg *config.Config) *Service {
	s := &Service{
		workerPool: NewWorkerPool(10),
	}

	brokers := parseBrokers(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		zap.L().Info("notifications disabled, no kafka brokers configured")
		return s
	}
	s.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return s
}

func parseBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (s *Service) Close() {
	s.workerPool.Close()
	if w, ok := s.writer.(*kafka.Writer); ok && w != nil {
		if err := w.Close(); err != nil {
			zap.L().Error("can't close kafka writer", zap.Error(err))
		}
	}
}

func (s *Service) OrderCreated(order *domain.Order) {
	s.enqueue(order.Slug, Event{
		Event:       "order.created",
		OrderSlug:   order.Slug,
		Name:        order.Name,
		Email:       order.Email,
		PhoneNumber: order.PhoneNumber,
		Amount:      order.TotalOrderPrice,
	})
}

func (s *Service) OrderPaid(order *domain.Order) {
	s.enqueue(order.Slug, Event{
		Event:       "order.paid",
		OrderSlug:   order.Slug,
		Name:        order.Name,
		Email:       order.Email,
		PhoneNumber: order.PhoneNumber,
		Amount:      order.TotalOrderPrice,
	})
}

func (s *Service) ItemStatusChanged(order *domain.Order, item *domain.OrderItem) {
	var event string
	switch item.Status {
	case domain.ItemSent:
		event = "order_item.sent"
	case domain.ItemReceived:
		event = "order_item.received"
	case domain.ItemCancelled:
		event = "order_item.cancelled"
	default:
		return
	}
	s.enqueue(item.Slug, Event{
		Event:       event,
		OrderSlug:   order.Slug,
		ItemSlug:    item.Slug,
		Name:        order.Name,
		Email:       order.Email,
		PhoneNumber: order.PhoneNumber,
	})
}

func (s *Service) enqueue(key string, event Event) {
	event.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	err := s.workerPool.AddTask(context.Background(), func() error {
		return s.publish(key, event)
	})
	if err != nil {
		zap.L().Error("can't enqueue notification", zap.String("event", event.Event), zap.Error(err))
	}
}

func (s *Service) publish(key string, event Event) error {
	if s.writer == nil {
		zap.L().Debug("notification skipped", zap.String("event", event.Event), zap.String("key", key))
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
}
