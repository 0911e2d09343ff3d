package message

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Logger        watermill.LoggerAdapter
	RedisClient   *redis.Client
	Events        EventGetter
	Promoter      Promoter
	Audit         AuditLogAppender
	Notifications NotificationCreator
}

type Router struct {
	*message.Router
}

// NewRouter wires the waitlist reconciler and the side-effect handlers.
// Every handler gets its own consumer group, so audit entries, notifications
// and promotions each progress independently and one failing handler never
// blocks the others.
func NewRouter(deps RouterDeps) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	addMiddlewares(router, deps.Logger)

	config := cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        deps.RedisClient,
				ConsumerGroup: "svc-bookings." + params.HandlerName,
			}, deps.Logger)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: deps.Logger,
	}

	ep, err := cqrs.NewEventProcessorWithConfig(router, config)
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	handlers := []cqrs.EventHandler{
		cqrs.NewEventHandler("reconcile-waitlist", handleReconcileWaitlist(deps.Events, deps.Promoter)),
		cqrs.NewEventHandler("audit-booking-created", handleAuditBookingCreated(deps.Events, deps.Audit)),
		cqrs.NewEventHandler("audit-booking-canceled", handleAuditBookingCanceled(deps.Events, deps.Audit)),
		cqrs.NewEventHandler("audit-waitlist-promoted", handleAuditWaitlistPromoted(deps.Events, deps.Audit)),
		cqrs.NewEventHandler("notify-booking-created", handleNotifyBookingCreated(deps.Events, deps.Notifications)),
		cqrs.NewEventHandler("notify-booking-canceled", handleNotifyBookingCanceled(deps.Events, deps.Notifications)),
		cqrs.NewEventHandler("notify-waitlist-promoted", handleNotifyWaitlistPromoted(deps.Events, deps.Notifications)),
	}

	if err := ep.AddHandlers(handlers...); err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	return &Router{router}, nil
}
