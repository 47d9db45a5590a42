package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	pkgkafka "github.com/BinhLe15/bookworm-app/pkg/kafka"
	"github.com/BinhLe15/bookworm-app/pkg/logger"
)

// Kafka topics for bookworm domain events.
var (
	TopicOrderPlaced    = pkgkafka.Topic("order", "placed")
	TopicBookCreated    = pkgkafka.Topic("book", "created")
	TopicBookUpdated    = pkgkafka.Topic("book", "updated")
	TopicBookDeleted    = pkgkafka.Topic("book", "deleted")
	TopicUserRegistered = pkgkafka.Topic("user", "registered")
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "order"
	AggregateTypeBook  = "book"
	AggregateTypeUser  = "user"
)

// Source identifier for events originating from this application.
const Source = "bookworm-app"

// OrderPlacedData is the payload for an order.placed event (full order snapshot).
type OrderPlacedData struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Items       []OrderItemData `json:"items"`
	TotalAmount int64           `json:"total_amount"`
}

// OrderItemData is the event payload for an order line item.
type OrderItemData struct {
	ID       string `json:"id"`
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// BookData is the payload for book lifecycle events.
type BookData struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	AuthorID string `json:"author_id"`
	Price    int64  `json:"price"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Producer publishes bookworm domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderPlaced publishes an order.placed event with the full order snapshot.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:       item.ID,
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	data := OrderPlacedData{
		ID:          order.ID,
		UserID:      order.UserID,
		Items:       items,
		TotalAmount: order.TotalAmount,
	}

	if err := p.publish(ctx, TopicOrderPlaced, order.ID, AggregateTypeOrder, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)

	return nil
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	return p.publishBookEvent(ctx, TopicBookCreated, book)
}

// PublishBookUpdated publishes a book.updated event.
func (p *Producer) PublishBookUpdated(ctx context.Context, book *domain.Book) error {
	return p.publishBookEvent(ctx, TopicBookUpdated, book)
}

// PublishBookDeleted publishes a book.deleted event carrying only the id.
func (p *Producer) PublishBookDeleted(ctx context.Context, bookID string) error {
	return p.publish(ctx, TopicBookDeleted, bookID, AggregateTypeBook, BookData{ID: bookID})
}

func (p *Producer) publishBookEvent(ctx context.Context, topic string, book *domain.Book) error {
	data := BookData{
		ID:       book.ID,
		Title:    book.Title,
		AuthorID: book.AuthorID,
		Price:    book.Price,
	}
	return p.publish(ctx, topic, book.ID, AggregateTypeBook, data)
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// publish wraps data in the standard envelope, tags it with the request's
// correlation id when one is present, and sends it.
func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	return nil
}
