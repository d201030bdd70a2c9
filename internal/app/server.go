// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"hesabu-service/internal/config"
	"hesabu-service/internal/db"
	authHandler "hesabu-service/internal/handlers/auth"
	businessHandler "hesabu-service/internal/handlers/business"
	customerHandler "hesabu-service/internal/handlers/customer"
	expenseHandler "hesabu-service/internal/handlers/expense"
	invoiceHandler "hesabu-service/internal/handlers/invoice"
	paymentHandler "hesabu-service/internal/handlers/payment"
	reportHandler "hesabu-service/internal/handlers/report"
	"hesabu-service/internal/middleware"
	"hesabu-service/internal/mpesa"
	"hesabu-service/internal/pkg/jwt"
	"hesabu-service/internal/pkg/session"
	"hesabu-service/internal/repository/postgres"
	authUsecase "hesabu-service/internal/service/auth"
	businesssvc "hesabu-service/internal/service/business"
	customersvc "hesabu-service/internal/service/customer"
	expensesvc "hesabu-service/internal/service/expense"
	invoicesvc "hesabu-service/internal/service/invoice"
	mpesasvc "hesabu-service/internal/service/mpesa"
	paymentsvc "hesabu-service/internal/service/payment"
	reportsvc "hesabu-service/internal/service/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT -----
	generator := jwt.NewGenerator([]byte(s.cfg.JWTSecret), s.cfg.JWTIssuer, s.cfg.JWTTTL)
	verifier := jwt.NewVerifier([]byte(s.cfg.JWTSecret), s.cfg.JWTIssuer)

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- M-Pesa gateway -----
	mpesaClient := mpesa.NewClient(s.cfg.Mpesa, logger)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	businessRepo := postgres.NewBusinessRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)

	// ----- Services -----
	authService := authUsecase.NewAuthService(userRepo, generator, sessionManager, rateLimiter, logger)
	businessService := businesssvc.NewBusinessService(businessRepo, logger)
	customerService := customersvc.NewCustomerService(customerRepo, logger)
	invoiceService := invoicesvc.NewInvoiceService(invoiceRepo, customerRepo, logger)
	expenseService := expensesvc.NewExpenseService(expenseRepo, logger)
	paymentService := paymentsvc.NewPaymentService(paymentRepo, invoiceRepo, logger)
	mpesaService := mpesasvc.NewMpesaService(mpesaClient, paymentService, invoiceRepo, logger)
	reportService := reportsvc.NewReportService(reportRepo, logger)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService)
	businessHandlerInst := businessHandler.NewBusinessHandler(businessService)
	customerHandlerInst := customerHandler.NewCustomerHandler(customerService)
	invoiceHandlerInst := invoiceHandler.NewInvoiceHandler(invoiceService, paymentService, businessRepo, customerRepo)
	expenseHandlerInst := expenseHandler.NewExpenseHandler(expenseService)
	paymentHandlerInst := paymentHandler.NewPaymentHandler(mpesaService, paymentService, rateLimiter, logger)
	reportHandlerInst := reportHandler.NewReportHandler(reportService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier, sessionManager)
	tenantMiddleware := middleware.NewTenantMiddleware(businessRepo)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSOrigin),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:      authHandlerInst,
		BusinessHandler:  businessHandlerInst,
		CustomerHandler:  customerHandlerInst,
		InvoiceHandler:   invoiceHandlerInst,
		ExpenseHandler:   expenseHandlerInst,
		PaymentHandler:   paymentHandlerInst,
		ReportHandler:    reportHandlerInst,
		AuthMiddleware:   authMiddleware,
		TenantMiddleware: tenantMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
