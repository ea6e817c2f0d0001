package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mentalbloom/mentalbloom/config"
	"github.com/mentalbloom/mentalbloom/contexttrack"
	"github.com/mentalbloom/mentalbloom/generation"
	"github.com/mentalbloom/mentalbloom/handlers"
	"github.com/mentalbloom/mentalbloom/intent"
	"github.com/mentalbloom/mentalbloom/journal"
	"github.com/mentalbloom/mentalbloom/rag"
	"github.com/mentalbloom/mentalbloom/retriever"
	"github.com/mentalbloom/mentalbloom/sentiment"
	"github.com/mentalbloom/mentalbloom/signals"
)

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("starting mentalbloom analysis service")
	cfg.Validate(logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 20 * time.Second,
	})

	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelRedis()
	if _, err := redisClient.Ping(redisCtx).Result(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	tracker := contexttrack.New(redisClient, logger)

	// Optional HTTP model services. A nil handle degrades the capability.
	var (
		intentClassifier signals.IntentClassifier
		zeroShot         signals.ZeroShotClassifier
		sentimentModel   signals.SentimentModel
		entityExtractor  signals.EntityExtractor
	)
	if cfg.IntentClassifierURL != "" {
		intentClassifier = signals.NewHTTPIntentClassifier(cfg.IntentClassifierURL)
	}
	if cfg.ZeroShotURL != "" {
		zeroShot = signals.NewHTTPZeroShotClassifier(cfg.ZeroShotURL)
	}
	if cfg.SentimentModelURL != "" {
		sentimentModel = signals.NewHTTPSentimentModel(cfg.SentimentModelURL)
	}
	if cfg.EntityExtractorURL != "" {
		entityExtractor = signals.NewHTTPEntityExtractor(cfg.EntityExtractorURL)
	}

	intentEngine := intent.NewEngine(
		signals.NewKeywordMatcher(),
		signals.NewEmergencyMatcher(),
		intentClassifier,
		zeroShot,
		entityExtractor,
		tracker,
		logger,
	)

	sentimentEngine := sentiment.NewEngine(
		signals.NewVaderScorer(),
		sentimentModel,
		signals.NewEmotionScorer(),
		signals.NewLanguageDetector(),
		tracker,
		logger,
	)

	var index retriever.VectorIndex
	if cfg.PineconeAPIKey != "" {
		pineconeCtx, cancelPinecone := context.WithTimeout(context.Background(), 30*time.Second)
		idx, err := retriever.NewPineconeIndex(pineconeCtx, cfg.PineconeAPIKey, cfg.PineconeIndexName, cfg.PineconeNamespace)
		cancelPinecone()
		if err != nil {
			logger.Fatal("failed to connect to pinecone", zap.Error(err))
		}
		index = idx
		logger.Info("connected to pinecone",
			zap.String("index", cfg.PineconeIndexName),
			zap.String("namespace", cfg.PineconeNamespace))
	}

	embedder := retriever.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	docs := retriever.New(index, embedder, cfg.SimilarityThreshold, logger)

	generator := generation.NewOpenAIClient(
		cfg.OpenAIAPIKey,
		cfg.OpenAIBaseURL,
		cfg.GenerationModel,
		cfg.Temperature,
		cfg.TopP,
		cfg.MaxOutputTokens,
		logger,
	)

	orchestrator := rag.NewOrchestrator(intentEngine, sentimentEngine, docs, generator, cfg.MaxDocuments, logger)
	defer orchestrator.Close()

	journalService := journal.NewService(journal.NewMemoryStore(), docs, logger)

	api := handlers.NewAPI(orchestrator, docs, journalService, logger)

	mux := http.NewServeMux()
	api.Register(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-stop:
		logger.Info("shutting down")
	case err := <-serverErr:
		logger.Error("server exited unexpectedly", zap.Error(err))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close failed", zap.Error(err))
	}

	logger.Info("shut down gracefully")
}
