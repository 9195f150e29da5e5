package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletmail/go-client/internal/adapters/rpc"
	"walletmail/go-client/internal/bootstrap/clientconfig"
	"walletmail/go-client/internal/mailbox"
	"walletmail/go-client/internal/metrics"
	"walletmail/go-client/internal/platform/privacylog"
	"walletmail/go-client/internal/platform/ratelimiter"
	"walletmail/go-client/internal/sealbox"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	storePath := flag.String("store-path", "", "Encrypted envelope store path (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("mailboxd version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *storePath != "" {
		_ = os.Setenv("WM_STORE_PATH", *storePath)
	}

	cfg := clientconfig.LoadFromPath(*configPath)
	logger := slog.New(privacylog.WrapHandler(slog.NewJSONHandler(os.Stdout, nil)))

	var store sealbox.EnvelopeStore = sealbox.NewMemoryStore()
	if cfg.StorePath != "" && cfg.StorePassphrase != "" {
		store = sealbox.NewFileStore(cfg.StorePath, cfg.StorePassphrase)
	}
	manager := mailbox.NewManager(mailbox.Config{
		Vault:   sealbox.NewVault(store, logger),
		Limiter: ratelimiter.New(cfg.UnlockRPS, cfg.UnlockBurst, cfg.UnlockIdleTTL),
		Logger:  logger,
		Metrics: metrics.NewCollector(prometheus.DefaultRegisterer),
	})
	if cfg.Persistence != nil && *cfg.Persistence {
		manager.EnablePersistence()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("mailboxd metrics listener failed: %v", err)
		}
	}()

	var rpcSrv *http.Server
	if cfg.RPCAddr != "" {
		rpcSrv = &http.Server{Addr: cfg.RPCAddr, Handler: rpc.NewServer(manager, logger).Handler()}
		go func() {
			if err := rpcSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("mailboxd rpc listener failed: %v", err)
			}
		}()
	}

	log.Println("mailboxd starting")
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rpcSrv != nil {
		_ = rpcSrv.Shutdown(shutdownCtx)
	}
	_ = srv.Shutdown(shutdownCtx)
	manager.Shutdown()
	log.Println("mailboxd stopped")
}
