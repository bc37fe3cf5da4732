package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"

	"showtix/internal/shared/config"
)

// Service owns the whole notification pipeline: the Kafka producer used by
// the domain services, the consumer workers, and the SMTP sender behind them.
type Service interface {
	Producer() Producer
	Start(ctx context.Context) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type service struct {
	producer   Producer
	consumer   Consumer
	numWorkers int

	isRunning bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewService wires producer, consumer and email sender from app config. The
// resolver expands broadcast notifications into per-user emails.
func NewService(cfg *config.Config, resolver RecipientResolver) (Service, error) {
	if cfg.Email.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP configuration is required: missing SMTP_HOST")
	}

	emailService, err := NewSMTPEmailService(NewSMTPConfig(cfg.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP email service: %w", err)
	}

	producer, err := NewKafkaProducer(NewKafkaProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumer, err := NewKafkaConsumer(NewConsumerConfig(cfg.Kafka), emailService, resolver)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	log.Printf("📧 Notification service initialized (SMTP host: %s, topic: %s)",
		cfg.Email.SMTPHost, cfg.Kafka.NotificationTopic)

	return &service{
		producer:   producer,
		consumer:   consumer,
		numWorkers: 3,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Producer exposes the publishing side to domain services
func (s *service) Producer() Producer {
	return s.producer
}

// Start launches the consumer workers
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("notification service is already running")
	}

	log.Printf("🚀 Starting notification service...")

	if err := s.consumer.StartConsumers(s.ctx, s.numWorkers); err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	s.isRunning = true
	log.Printf("✅ Notification service started successfully")
	return nil
}

// Stop shuts down the consumer workers and closes the producer
func (s *service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return fmt.Errorf("notification service is not running")
	}

	log.Printf("🛑 Stopping notification service...")

	s.cancel()

	if err := s.consumer.Stop(); err != nil {
		log.Printf("Error stopping consumer: %v", err)
	}

	if err := s.producer.Close(); err != nil {
		log.Printf("Error closing producer: %v", err)
	}

	s.isRunning = false
	log.Printf("✅ Notification service stopped")
	return nil
}

// HealthCheck reports whether the pipeline is running
func (s *service) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	isRunning := s.isRunning
	s.mu.RUnlock()

	if !isRunning {
		return fmt.Errorf("notification service is not running")
	}

	return s.consumer.HealthCheck(ctx)
}
