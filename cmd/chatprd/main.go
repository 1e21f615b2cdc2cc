package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/explohq/chatprd/internal/blobstore"
	"github.com/explohq/chatprd/internal/config"
	"github.com/explohq/chatprd/internal/export"
	"github.com/explohq/chatprd/internal/llm"
	"github.com/explohq/chatprd/internal/logging"
	"github.com/explohq/chatprd/internal/metrics"
	"github.com/explohq/chatprd/internal/prd"
	"github.com/explohq/chatprd/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Config{})
		bootLog.Fatal().Err(err).Msg("config")
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	store, err := blobstore.NewBolt(cfg.DataDir+"/chatprd.db", m)
	if err != nil {
		log.Fatal().Err(err).Msg("blobstore")
	}
	defer store.Close()

	client := llm.NewClient(cfg.OpenAIAPIKey, log, llm.WithMetrics(m))

	docs := prd.NewDocumentStore(store, log)
	extractor := prd.NewExtractor(client, docs, cfg.ExtractModel, log)
	summarizer := prd.NewSummarizer(client, store, cfg.ExtractModel, log)
	optimizer := prd.NewOptimizer(extractor, summarizer, docs, log, m)
	exporter := export.NewExporter(client, store, docs, cfg.ExportModel, log)

	handler := server.NewHandler(client, cfg.ChatModel, optimizer, exporter, log, m)
	router := handler.Router(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("chatprd: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("chatprd: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("shutdown")
	}
	log.Info().Msg("chatprd: stopped")
}
