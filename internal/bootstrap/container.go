package bootstrap

import (
	"log"
	"time"

	"stewardship-be/internal/config"
	"stewardship-be/internal/controller"
	"stewardship-be/internal/gateway"
	"stewardship-be/internal/pkg/logger"
	"stewardship-be/internal/pkg/mailer"
	"stewardship-be/internal/pkg/render"
	"stewardship-be/internal/repository/unitofwork"
	"stewardship-be/internal/scheduler"
	"stewardship-be/internal/service"

	pktNats "stewardship-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DonationController  controller.IDonationController
	RecurringController controller.IRecurringController
	ReceiptController   controller.IReceiptController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	SchedulerManager *scheduler.Manager

	Logger        logger.ILogger
	NatsPublisher *pktNats.Publisher
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
		cfg.SMTP.Email,
		cfg.App.OrgName,
	)

	renderer, err := render.NewHTMLRenderer(cfg.Receipt.StorageDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize receipt renderer: %v", err)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	localPublisher := service.NewPublisherService(pubSub, service.GivingEventsTopic, sysLogger)

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	sinks := []service.IEventPublisher{localPublisher}
	if natsPub != nil {
		sinks = append(sinks, natsPub)
	}
	eventPublisher := service.NewFanoutPublisher(sysLogger, sinks...)

	// 3. Payment Gateways
	gateways := gateway.NewSelector(
		gateway.NewMidtransGateway(cfg.Gateway.MidtransServerKey, cfg.Gateway.MidtransProduction),
		gateway.NewXenditGateway(cfg.Gateway.XenditSecretKey, cfg.Gateway.XenditBaseURL, cfg.Gateway.XenditCallbackTok),
	)

	// 4. Services
	directory := service.NewMemberDirectory(uowFactory)

	paymentService := service.NewPaymentService(
		uowFactory,
		gateways,
		directory,
		eventPublisher,
		sysLogger,
		cfg.Gateway.Default,
		time.Duration(cfg.Gateway.ChargeTimeoutSecs)*time.Second,
	)
	receiptService := service.NewTaxReceiptService(
		uowFactory,
		directory,
		renderer,
		eventPublisher,
		sysLogger,
		cfg.App.OrgName,
		cfg.Receipt.SinglePrefix,
		cfg.Receipt.AnnualPrefix,
	)
	paymentService.SetReceiptIssuer(receiptService)

	recurringService := service.NewRecurringDonationService(
		uowFactory,
		paymentService,
		gateways,
		directory,
		eventPublisher,
		sysLogger,
		cfg.Gateway.Default,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		service.GivingEventsTopic,
		uowFactory,
		directory,
		emailService,
		sysLogger,
	)

	// 5. Scheduler
	schedulerManager, err := scheduler.NewManager(sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to create scheduler: %v", err)
	}
	schedulerManager.Register(scheduler.NewRecurringChargeJob(recurringService, sysLogger, cfg.Schedule.ChargeCron))
	schedulerManager.Register(scheduler.NewReceiptReconcileJob(uowFactory, receiptService, sysLogger, cfg.Schedule.ReconcileCron))

	// 6. Controllers
	return &Container{
		DonationController:  controller.NewDonationController(paymentService),
		RecurringController: controller.NewRecurringController(recurringService),
		ReceiptController:   controller.NewReceiptController(receiptService),
		ConsumerService:     consumerService,
		SchedulerManager:    schedulerManager,
		Logger:              sysLogger,
		NatsPublisher:       natsPub,
	}
}
