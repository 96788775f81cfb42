package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"tryout-service/internal/audit"
	"tryout-service/internal/bucketing"
	"tryout-service/internal/client"
	"tryout-service/internal/config"
	"tryout-service/internal/handler"
	"tryout-service/internal/mailer"
	redisrepo "tryout-service/internal/repository/redis"
	"tryout-service/internal/repository/scylla"
	"tryout-service/internal/service"
	"tryout-service/internal/storage"
	"tryout-service/internal/util"
)

// Factory owns the lifecycle of every application dependency: config,
// clients, repositories, services and handlers.
type Factory struct {
	config *config.Config

	redisClient    *client.RedisClient
	scyllaClient   *scylla.ScyllaClient
	auditPublisher *audit.Publisher

	participantRepo *scylla.ParticipantRepository
	paymentRepo     *scylla.PaymentRepository
	adminRepo       *scylla.AdminRepository
	otpLedger       *redisrepo.OTPLedger
	sessionCache    *redisrepo.SessionCache

	otpService          *service.OTPService
	registrationService *service.RegistrationService
	paymentService      *service.PaymentService
	adminService        *service.AdminService
	statsService        *service.StatsService

	closeOnce sync.Once
}

// NewFactory loads config, initializes all clients and wires the services.
func NewFactory() (*Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	if err := f.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}
	if err := f.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	util.Info("Factory initialized",
		util.String("environment", cfg.Environment),
		util.Bool("audit_enabled", cfg.Kafka.Enabled()))

	return f, nil
}

func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	redisClient, err := client.NewRedisClient(f.config)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	f.redisClient = redisClient
	if err := f.redisClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}

	scyllaClient, err := scylla.NewScyllaClient(f.config)
	if err != nil {
		return fmt.Errorf("scylla: %w", err)
	}
	f.scyllaClient = scyllaClient
	if err := f.scyllaClient.HealthCheck(); err != nil {
		return fmt.Errorf("scylla health check: %w", err)
	}

	// Audit is best effort; the service runs without brokers.
	f.auditPublisher = audit.NewPublisher(f.config.Kafka)

	return nil
}

func (f *Factory) initializeServices() error {
	buckets := bucketing.NewManager(bucketing.DefaultParticipantBuckets)

	f.otpLedger = redisrepo.NewOTPLedger(f.redisClient)
	f.sessionCache = redisrepo.NewSessionCache(f.redisClient)
	f.participantRepo = scylla.NewParticipantRepository(f.scyllaClient, buckets)
	f.paymentRepo = scylla.NewPaymentRepository(f.scyllaClient)
	f.adminRepo = scylla.NewAdminRepository(f.scyllaClient)

	mail := mailer.NewResendMailer(f.config.Mail)

	fileStore, err := storage.NewFileStore(f.config.Payment.UploadDir)
	if err != nil {
		return err
	}

	f.otpService = service.NewOTPService(f.otpLedger, mail, f.config.OTP.Secret, f.config.OTP.TTL)
	f.registrationService = service.NewRegistrationService(f.participantRepo, mail, f.auditPublisher)
	f.paymentService = service.NewPaymentService(f.paymentRepo, fileStore, f.config.Payment.AmountIDR, f.auditPublisher)
	f.adminService = service.NewAdminService(f.adminRepo, f.sessionCache, f.config.Admin.SessionTTL)
	f.statsService = service.NewStatsService(f.participantRepo, f.paymentRepo, f.config.Registration.SlotLimit)

	return nil
}

func (f *Factory) Config() *config.Config {
	return f.config
}

// Router builds the HTTP router over the wired handlers.
func (f *Factory) Router() chi.Router {
	participants := handler.NewParticipantHandler(f.otpService, f.registrationService, f.statsService)
	payments := handler.NewPaymentHandler(f.paymentService, f.config.Payment.MaxUploadBytes)
	admins := handler.NewAdminHandler(f.adminService)
	return handler.NewRouter(participants, payments, admins, util.Get())
}

// Close tears down all clients exactly once.
func (f *Factory) Close() {
	f.closeOnce.Do(func() {
		if f.auditPublisher != nil {
			_ = f.auditPublisher.Close()
		}
		if f.scyllaClient != nil {
			f.scyllaClient.Close()
		}
		if f.redisClient != nil {
			_ = f.redisClient.Close()
		}
		util.Sync()
	})
}
