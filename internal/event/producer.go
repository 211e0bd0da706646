package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fancystore/storeadmin/internal/domain"
	pkgkafka "github.com/fancystore/storeadmin/pkg/kafka"
	"github.com/fancystore/storeadmin/pkg/logger"
)

// Kafka topics for catalog and order events.
var (
	TopicProductCreated     = pkgkafka.Topic("product", "created")
	TopicProductUpdated     = pkgkafka.Topic("product", "updated")
	TopicProductDeleted     = pkgkafka.Topic("product", "deleted")
	TopicCategoryCreated    = pkgkafka.Topic("category", "created")
	TopicCategoryUpdated    = pkgkafka.Topic("category", "updated")
	TopicCategoryDeleted    = pkgkafka.Topic("category", "deleted")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
)

// Aggregate types.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeCategory = "category"
	AggregateTypeOrder    = "order"
)

// SourceStoreAdmin identifies events emitted by this service.
const SourceStoreAdmin = "storeadmin"

// Publisher sends an event envelope to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// ProductData is the payload for product events.
type ProductData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageRef *string `json:"image_ref,omitempty"`
}

// CategoryData is the payload for category events.
type CategoryData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageRef *string `json:"image_ref,omitempty"`
}

// DeletedData is the payload for deletion events.
type DeletedData struct {
	ID string `json:"id"`
}

// OrderStatusChangedData is the payload for order.status_changed.
type OrderStatusChangedData struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// Producer publishes storeadmin domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, DeletedData{ID: id})
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryCreated, c.ID, AggregateTypeCategory, categoryData(c))
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategoryUpdated, c.ID, AggregateTypeCategory, categoryData(c))
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicCategoryDeleted, id, AggregateTypeCategory, DeletedData{ID: id})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, previous string) error {
	data := OrderStatusChangedData{
		ID:             order.ID,
		UserID:         order.UserID,
		PreviousStatus: previous,
		Status:         order.Status,
	}
	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStoreAdmin, data,
		pkgkafka.WithActor(logger.OperatorFromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageRef: p.ImageRef,
	}
}

func categoryData(c *domain.Category) CategoryData {
	return CategoryData{ID: c.ID, Name: c.Name, ImageRef: c.ImageRef}
}
