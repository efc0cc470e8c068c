package bootstrap

import (
	"log"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/controller"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/logger"
	"github.com/OffCmfrt/exchange-return-tracking/internal/pkg/mailer"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/unitofwork"
	"github.com/OffCmfrt/exchange-return-tracking/internal/service"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/commerce"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/courier"
	pktNats "github.com/OffCmfrt/exchange-return-tracking/pkg/nats"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/payments"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RequestController controller.IRequestController
	PaymentController controller.IPaymentController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SweeperService  service.ISweeperService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(pubSub, service.StatusEventTopic)

	var natsPublisher *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] NATS unavailable, events stay in-process: %v", err)
		} else {
			natsPublisher = pub
		}
	}

	var redisClient *redis.Client
	if cfg.App.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid REDIS_URL, tracking cache disabled: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
		}
	}

	// 3. External Gateway Adapters
	commerceClient := commerce.NewCommerceClient(cfg.Commerce)
	courierClient := courier.NewCourierClient(cfg.Courier)
	paymentClient := payments.NewPaymentClient(cfg.Payment)

	// 4. Services
	lifecycleService := service.NewLifecycleService(
		uowFactory,
		commerceClient,
		courierClient,
		paymentClient,
		publisherService,
		redisClient,
		sysLogger,
		cfg.Policy,
	)
	sweeperService := service.NewSweeperService(uowFactory, courierClient, lifecycleService, sysLogger)
	authService := service.NewAuthService(cfg.Admin)
	consumerService := service.NewConsumerService(pubSub, service.StatusEventTopic, emailService, natsPublisher)

	// 5. Controllers
	return &Container{
		RequestController: controller.NewRequestController(lifecycleService),
		PaymentController: controller.NewPaymentController(lifecycleService, cfg.Payment.WebhookSecret),
		AdminController:   controller.NewAdminController(authService, lifecycleService, sweeperService, sysLogger),
		ConsumerService:   consumerService,
		SweeperService:    sweeperService,
		Logger:            sysLogger,
	}
}
