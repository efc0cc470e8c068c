package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/mailer"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/events"
	pktNats "github.com/OffCmfrt/exchange-return-tracking/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains lifecycle events off the in-process bus, emails the
// customer and mirrors the event to NATS for downstream systems.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		emailService:   emailService,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.BaseEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Printf("[ERROR] Failed to unmarshal event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	requestID := stringField(event.Data, "request_id")
	email := stringField(event.Data, "email")
	orderNumber := stringField(event.Data, "order_number")
	from := stringField(event.Data, "from")
	to := stringField(event.Data, "to")

	log.Printf("[INFO] Processing transition %s -> %s for %s", from, to, requestID)

	if email != "" && to != "" {
		var mailErr error
		if from == "" {
			mailErr = cs.emailService.SendRequestReceived(email, requestID, orderNumber)
		} else {
			mailErr = cs.emailService.SendStatusUpdate(email, requestID, orderNumber, to)
		}
		if mailErr != nil {
			log.Printf("[WARN] Notification email failed for %s: %v", requestID, mailErr)
			// Email failure is not retriable from here; the state change
			// already happened.
		}
	}

	if cs.eventPublisher != nil {
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] NATS mirror failed for %s: %v", requestID, err)
		}
	}

	msg.Ack()
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
