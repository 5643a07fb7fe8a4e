// Package event publishes catalog domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdrielSA/backend-test/internal/domain"
	pkgkafka "github.com/AdrielSA/backend-test/pkg/kafka"
	"github.com/AdrielSA/backend-test/pkg/logger"
)

// Kafka topic constants for catalog domain events.
const (
	TopicMovieCreated  = "catalog.movie.created"
	TopicMovieDisabled = "catalog.movie.disabled"
	TopicReviewCreated = "catalog.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeMovie  = "movie"
	AggregateTypeReview = "review"
)

// SourceCatalogService identifies events originating from this service.
const SourceCatalogService = "catalog-service"

// MovieCreatedData is the payload for a movie.created event.
type MovieCreatedData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ReleaseYear int    `json:"release_year"`
	Genre       string `json:"genre"`
	Director    string `json:"director"`
}

// MovieDisabledData is the payload for a movie.disabled event.
type MovieDisabledData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReviewCreatedData is the payload for a review.created event. Reviews are
// keyed by movie so a movie's events share a partition.
type ReviewCreatedData struct {
	ID           string `json:"id"`
	MovieID      string `json:"movie_id"`
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"`
}

// Publisher is the subset of *pkgkafka.Producer the catalog needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published catalog event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishMovieCreated publishes a movie.created event.
func (p *Producer) PublishMovieCreated(ctx context.Context, m *domain.Movie) error {
	return p.publish(ctx, TopicMovieCreated, m.ID, AggregateTypeMovie, MovieCreatedData{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseYear: m.ReleaseYear,
		Genre:       m.Genre,
		Director:    m.Director,
	})
}

// PublishMovieDisabled publishes a movie.disabled event.
func (p *Producer) PublishMovieDisabled(ctx context.Context, m *domain.Movie) error {
	return p.publish(ctx, TopicMovieDisabled, m.ID, AggregateTypeMovie, MovieDisabledData{
		ID:    m.ID,
		Title: m.Title,
	})
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, r.MovieID, AggregateTypeReview, ReviewCreatedData{
		ID:           r.ID,
		MovieID:      r.MovieID,
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
	})
}

// Noop discards every event. It is used when events are disabled.
type Noop struct{}

func (Noop) PublishMovieCreated(context.Context, *domain.Movie) error   { return nil }
func (Noop) PublishMovieDisabled(context.Context, *domain.Movie) error  { return nil }
func (Noop) PublishReviewCreated(context.Context, *domain.Review) error { return nil }
