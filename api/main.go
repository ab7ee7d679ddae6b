package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/civic-radar/backend/internal/config"
	"github.com/DeafMist/civic-radar/backend/internal/districts"
	"github.com/DeafMist/civic-radar/backend/internal/events"
	"github.com/DeafMist/civic-radar/backend/internal/logger"
	"github.com/DeafMist/civic-radar/backend/internal/markets"
	"github.com/DeafMist/civic-radar/backend/internal/news"
	"github.com/DeafMist/civic-radar/backend/internal/relevance"
	"github.com/DeafMist/civic-radar/backend/internal/search"
	"github.com/DeafMist/civic-radar/backend/internal/synthetic"
	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	civicData, err := config.LoadCivicData(cfg.CivicDataFile)
	if err != nil {
		log.Error("load civic data", slog.Any("err", err))
		os.Exit(1)
	}

	sink, closeSink := newSink(log, cfg.Events)
	defer closeSink()

	srv := newServer(log, cfg, civicData, sink)
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2*cfg.UpstreamTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// newSink logs every event and, when brokers are configured, also publishes
// warnings to Kafka.
func newSink(log *slog.Logger, cfg config.Events) (events.Sink, func()) {
	logSink := events.NewLogSink(log)
	if len(cfg.KafkaBrokers) == 0 {
		return logSink, func() {}
	}

	kafkaSink := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, slog.LevelWarn, log)
	log.Info("publishing events to kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaTopic),
	)
	return events.Multi(logSink, kafkaSink), func() {
		if err := kafkaSink.Close(); err != nil {
			log.Error("close kafka writer", slog.Any("err", err))
		}
	}
}

// newServer wires the upstream adapters into the aggregation services.
func newServer(log *slog.Logger, cfg *config.API, civicData *config.CivicData, sink events.Sink) *server {
	client := upstream.NewClient(cfg.UpstreamTimeout)
	up := cfg.Upstreams

	gisBase := up.GIS.BaseURL
	if gisBase == "" {
		gisBase = civicData.GIS.BaseURL
	}

	openStates := upstream.NewOpenStates(client, up.OpenStates.BaseURL, up.OpenStates.APIKey)
	congress := upstream.NewCongress(client, up.Congress.BaseURL, up.Congress.APIKey)
	courts := upstream.NewCourtListener(client, up.CourtListener.BaseURL, up.CourtListener.APIKey)
	register := upstream.NewFederalRegister(client, up.FederalRegister.BaseURL)
	lda := upstream.NewLDA(client, up.LDA.BaseURL, up.LDA.APIKey)
	feeds := upstream.NewFeeds(client, up.GoogleNews.BaseURL, up.YouTubeFeeds.BaseURL, cfg.FeedTimeout)

	filter := relevance.New(relevance.Keywords{
		Person: civicData.Relevance.PersonKeywords,
		State:  civicData.Relevance.StateKeywords,
	})

	return &server{
		log:         log,
		cfg:         cfg,
		civic:       upstream.NewCivic(client, up.Civic.BaseURL, up.Civic.APIKey),
		legislation: openStates,
		federal:     congress,
		courts:      courts,
		register:    register,
		lobbying:    lda,
		media:       feeds,
		markets: markets.NewService(
			upstream.NewPolymarket(client, up.Polymarket.BaseURL),
			upstream.NewKalshi(client, up.Kalshi.BaseURL),
			filter,
			sink,
		),
		news:      news.NewService(feeds, filter, sink),
		districts: districts.New(upstream.NewGIS(client, gisBase), civicData, sink),
		unified: search.New([]search.Source{
			search.Bills(openStates, cfg.DefaultJurisdiction),
			search.FederalBills(congress),
			search.CourtCases(courts),
			search.Regulations(register),
			search.Lobbying(lda),
		}, cfg.SearchLimit, sink),
		synthetic: synthetic.New(synthetic.DefaultCatalog()),
	}
}
