package main

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sellerdesk/payout-reconciler/internal/api"
	"github.com/sellerdesk/payout-reconciler/internal/config"
	"github.com/sellerdesk/payout-reconciler/internal/feed"
	"github.com/sellerdesk/payout-reconciler/internal/rates"
	"github.com/sellerdesk/payout-reconciler/internal/recon"
	"github.com/sellerdesk/payout-reconciler/internal/repository"
	"github.com/sellerdesk/payout-reconciler/internal/transport"
)

const rateCacheSize = 512

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	logger.Info("initializing database", zap.String("path", cfg.DBPath))
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		logger.Fatal("init db", zap.Error(err))
	}
	defer db.Close()

	// Repositories.
	orderRepo := repository.NewOrderRepo(db)
	summaryRepo := repository.NewSummaryRepo(db)
	rateRepo := repository.NewRateRepo(db)

	// External collaborators.
	httpClient := transport.NewClient(cfg.HTTPTimeout, logger)
	feedClient := feed.NewClient(cfg.FeedBaseURL, httpClient)
	aggregator := feed.NewAggregator(feedClient, logger)

	sourceA := rates.NewHTTPSource("source-a",
		cfg.SettlementCurrency+"/"+cfg.ReserveCurrency, cfg.RateSourceAURL, httpClient)
	sourceB := rates.NewHTTPSource("source-b",
		cfg.ReserveCurrency+"/"+cfg.LocalCurrency, cfg.RateSourceBURL, httpClient)

	rateCache, err := rates.NewCache(rateCacheSize, rateRepo)
	if err != nil {
		logger.Fatal("init rate cache", zap.Error(err))
	}
	resolver := rates.NewResolver(rateCache, logger)

	// Reconciliation engine. The limiter spaces transaction-feed calls:
	// one token per order, refilled at the configured rate.
	limiter := rate.NewLimiter(rate.Limit(cfg.FeedRatePerSec), 1)
	svc := recon.NewService(
		aggregator, resolver, sourceA, sourceB,
		orderRepo, summaryRepo, limiter,
		cfg.Seller, cfg.BatchWindowDays, cfg.BatchMaxOrders,
		logger,
	)

	router := api.NewRouter(svc, orderRepo, summaryRepo, cfg.Seller, logger)

	logger.Info("payout reconciler listening",
		zap.String("port", cfg.Port),
		zap.String("settlement_currency", cfg.SettlementCurrency),
		zap.String("reserve_currency", cfg.ReserveCurrency),
		zap.String("local_currency", cfg.LocalCurrency),
	)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
