package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockdesk/config"
	"stockdesk/internal/pkg/cache"
	"stockdesk/internal/pkg/clock"
	"stockdesk/internal/pkg/database"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
	"stockdesk/internal/pkg/token"

	"stockdesk/internal/api/history"
	"stockdesk/internal/api/product"
	"stockdesk/internal/api/requisition"
	"stockdesk/internal/api/router"
	"stockdesk/internal/api/user"
	"stockdesk/internal/repository/historyrepo"
	"stockdesk/internal/repository/productrepo"
	"stockdesk/internal/repository/sequencerepo"
	"stockdesk/internal/repository/stockrepo"
	"stockdesk/internal/repository/userrepo"
	"stockdesk/internal/service/productservice"
	"stockdesk/internal/service/reportservice"
	"stockdesk/internal/service/requisitionservice"
	"stockdesk/internal/service/userservice"
)

// @title stockdesk API
// @version 1.0
// @description Requisição de materiais do almoxarifado sobre o Product Service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{
		"env":              cfg.Environment,
		"sequence_backend": cfg.SequenceBackend,
		"product_service":  cfg.ProductServiceURL,
	})

	// 1. Infraestrutura

	// A. Cache (Redis): rate limit e, opcionalmente, a sequência de documentos.
	var cacheClient cache.Client
	redisClient := cache.NewRedisClient(cfg.RedisAddr)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.CacheTimeout)
	err = redisClient.Ping(pingCtx)
	cancelPing()
	switch {
	case err == nil:
		cacheClient = redisClient
		defer redisClient.Close()
		log.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})
	case cfg.SequenceBackend == config.SequenceBackendRedis:
		log.Fatal("Redis indisponível e SEQUENCE_BACKEND=redis.", err)
	default:
		redisClient.Close()
		log.Warn("Redis indisponível; rate limit desligado.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
	}

	// B. Sequência de números de documento.
	var sequence sequencerepo.SequenceStore
	switch cfg.SequenceBackend {
	case config.SequenceBackendRedis:
		sequence = sequencerepo.NewRedisStore(cacheClient, log)
	case config.SequenceBackendPostgres:
		db, err := database.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer db.Close()
		log.Info("Conexão PostgreSQL estabelecida.", nil)
		sequence = sequencerepo.NewPostgresStore(db, cfg.DBTimeout, log)
	default:
		sequence = sequencerepo.NewFileStore(cfg.SequenceFile, log)
	}

	// C. Product Service e Tokens (JWT).
	api := productapi.NewClient(cfg.ProductServiceURL, cfg.ProductServiceTimeout)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 2. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	productRepo := productrepo.NewProductRepository(api, log)
	stockRepo := stockrepo.NewStockRepository(api, log)
	userRepo := userrepo.NewUserRepository(api, log)
	historyRepo := historyrepo.NewHistoryRepository(api, log)
	log.Debug("Repositórios inicializados.", nil)

	clk := clock.NewSystem()
	registry := requisitionservice.NewRegistry(requisitionservice.Dependencies{
		Catalog: productRepo,
		Stock:   stockRepo,
		Issuer:  requisitionservice.NewDocumentNumberIssuer(sequence, cfg.SequenceKey, clk),
		Clock:   clk,
		Options: requisitionservice.Options{
			Locations:   cfg.Locations,
			DefaultNote: cfg.WithdrawalNote,
		},
		Logger: log,
	})
	productSvc := productservice.NewService(productRepo, stockRepo, log)
	userSvc := userservice.NewService(userRepo, log)
	reportSvc := reportservice.NewService(historyRepo, log)
	log.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Product:     product.NewHandler(productSvc, log),
		User:        user.NewHandler(userSvc, log),
		History:     history.NewHandler(reportSvc, log),
		Requisition: requisition.NewHandler(registry, log),
	}

	// 3. Roteador e Servidor
	r := router.NewRouter(handlers, tokenSvc, router.RateLimit{
		Cache:       cacheClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor stockdesk ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", map[string]interface{}{"workflows": registry.Len()})
}
