package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"showtix/internal/shared/config"

	"github.com/IBM/sarama"
)

// Recipient is a resolved delivery target for a broadcast notification
type Recipient struct {
	Email string
	Name  string
}

// RecipientResolver expands broadcast notifications into concrete recipients.
// For show_added that means everyone who favorited the movie.
type RecipientResolver interface {
	FavoritesOf(ctx context.Context, movieID string) ([]Recipient, error)
}

// Consumer interface defines the contract for the email delivery side
type Consumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

// ConsumerConfig contains configuration for the Kafka notification consumer
type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

// NewConsumerConfig builds a consumer configuration from app config
func NewConsumerConfig(cfg config.KafkaConfig) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              cfg.Brokers,
		GroupID:              cfg.ConsumerGroup,
		Topics:               []string{cfg.NotificationTopic},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    5 * time.Minute,
		AutoCommit:           true,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// KafkaConsumer consumes notifications from Kafka and delivers emails
type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	resolver      RecipientResolver
	topics        []string
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewKafkaConsumer creates a new Kafka notification consumer
func NewKafkaConsumer(config *ConsumerConfig, emailService EmailService, resolver RecipientResolver) (Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if config.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		resolver:      resolver,
		topics:        config.Topics,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// StartConsumers starts the given number of consumer workers
func (kc *KafkaConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	log.Printf("📥 Starting %d notification consumer workers for topics: %v", numWorkers, kc.topics)

	// Start error handler goroutine
	go kc.handleErrors()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}

	log.Printf("📥 All %d notification consumer workers started", numWorkers)
	return nil
}

func (kc *KafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		consumer: kc,
		workerID: workerID,
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("📥 Worker %d shutting down", workerID)
			return
		default:
			err := kc.consumerGroup.Consume(ctx, kc.topics, handler)
			if err != nil {
				log.Printf("📥 Worker %d error consuming messages: %v", workerID, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *KafkaConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		log.Printf("📥 Consumer group error: %v", err)
	}
}

// Stop stops the consumer workers and closes the consumer group
func (kc *KafkaConsumer) Stop() error {
	log.Println("📥 Stopping notification consumer...")
	kc.cancel()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}

	log.Println("📥 Notification consumer stopped")
	return nil
}

// HealthCheck verifies the consumer is still running
func (kc *KafkaConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-kc.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if kc.emailService == nil {
			return fmt.Errorf("email service not configured")
		}
		return nil
	}
}

type consumerGroupHandler struct {
	consumer *KafkaConsumer
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Worker %d: Consumer group session started", h.workerID)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Worker %d: Consumer group session ended", h.workerID)
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			// Delivery is best-effort: failures are logged and the offset is
			// committed either way, so a broken address cannot wedge the
			// partition
			if err := h.processMessage(session.Context(), message); err != nil {
				log.Printf("📥 Worker %d: Error processing message: %v", h.workerID, err)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	log.Printf("📥 Worker %d: Processing notification from topic %s, partition %d, offset %d",
		h.workerID, message.Topic, message.Partition, message.Offset)

	notification, err := FromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	recipients, err := h.resolveRecipients(ctx, notification)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		log.Printf("📥 Worker %d: Notification %s has no recipients, skipping", h.workerID, notification.ID)
		return nil
	}

	subject, body, err := RenderEmail(notification)
	if err != nil {
		return err
	}

	var firstErr error
	for _, recipient := range recipients {
		// Re-render per recipient so the greeting carries their name
		perRecipient := *notification
		perRecipient.RecipientEmail = recipient.Email
		perRecipient.RecipientName = recipient.Name
		perSubject, perBody := subject, body
		if recipient.Name != notification.RecipientName {
			perSubject, perBody, err = RenderEmail(&perRecipient)
			if err != nil {
				firstErr = err
				continue
			}
		}

		if err := h.sendWithRetry(ctx, recipient.Email, perSubject, perBody); err != nil {
			log.Printf("📥 Worker %d: Failed to deliver %s to %s: %v", h.workerID, notification.Type, recipient.Email, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Printf("📧 Worker %d: Email notification sent successfully to %s", h.workerID, recipient.Email)
	}

	return firstErr
}

// resolveRecipients returns the direct recipient, or expands a broadcast via
// the resolver
func (h *consumerGroupHandler) resolveRecipients(ctx context.Context, notification *Notification) ([]Recipient, error) {
	if notification.RecipientEmail != "" {
		return []Recipient{{Email: notification.RecipientEmail, Name: notification.RecipientName}}, nil
	}

	if notification.Type != TypeShowAdded {
		return nil, nil
	}

	movieID, ok := notification.Data["movie_id"]
	if !ok || h.consumer.resolver == nil {
		return nil, nil
	}

	recipients, err := h.consumer.resolver.FavoritesOf(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve favorite recipients: %w", err)
	}
	return recipients, nil
}

func (h *consumerGroupHandler) sendWithRetry(ctx context.Context, to, subject, body string) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoffDuration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := h.consumer.emailService.SendHTML(ctx, to, subject, body)
		if err == nil {
			if attempt > 0 {
				log.Printf("📥 Worker %d: Successfully delivered email after %d retries", h.workerID, attempt)
			}
			return nil
		}

		if attempt == maxRetries {
			return err
		}

		// Exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
