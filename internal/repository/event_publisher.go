package repository

import (
	"context"

	"UKPredict/internal/domain/models"
	domrepo "UKPredict/internal/domain/repository"
	pkgkafka "UKPredict/pkg/kafka"
)

// KafkaEventPublisher publishes prediction events keyed by service, so one
// service's events stay ordered within a partition.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, e *models.PredictionEvent) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{eventMessage(e)})
}

func eventMessage(e *models.PredictionEvent) pkgkafka.Message {
	m := pkgkafka.Message{Key: []byte(e.Service), Value: e}
	if e.TraceID != "" {
		m.Headers = map[string]string{pkgkafka.TraceHeader: e.TraceID}
	}
	return m
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
