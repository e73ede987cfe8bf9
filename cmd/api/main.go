package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/mustafizur/chat/backend/internal/config"
	"github.com/mustafizur/chat/backend/internal/handler"
	"github.com/mustafizur/chat/backend/internal/metrics"
	"github.com/mustafizur/chat/backend/internal/model/contact"
	"github.com/mustafizur/chat/backend/internal/service/ai"
	"github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/internal/service/reply"
	"github.com/mustafizur/chat/backend/internal/service/store"
	"github.com/mustafizur/chat/backend/internal/storage/kv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	roster := contact.Seed()
	if cfg.Chat.ContactsFile != "" {
		roster, err = contact.LoadRoster(cfg.Chat.ContactsFile)
		if err != nil {
			log.Fatalf("failed to load contacts: %v", err)
		}
		log.Printf("loaded %d contacts from %s", len(roster), cfg.Chat.ContactsFile)
	}

	backend, err := kv.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Printf("warning: failed to close store: %v", err)
		}
	}()
	log.Printf("conversation store: backend=%s namespace=%s", cfg.Store.Backend, cfg.Store.Namespace)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	msgStore := store.New(backend, cfg.Store.Namespace, m)

	var responder chat.Responder = chat.CannedResponder{}
	if cfg.AI.Enabled() {
		aiResponder, err := ai.NewResponder(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI responder: %v", err)
			log.Println("continuing with canned replies")
		} else {
			responder = aiResponder
			log.Println("AI responder initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，使用预设自动回复")
	}

	chatService := chat.NewService(contact.NewMemoryStore(roster), msgStore, chat.Options{
		Window:          reply.Window{Min: cfg.Chat.ReplyMinDelay, Max: cfg.Chat.ReplyMaxDelay},
		Responder:       responder,
		PersistDebounce: cfg.Chat.PersistDebounce,
		Metrics:         m,
	})

	var limiter *rate.Limiter
	if cfg.Chat.SendRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Chat.SendRate), cfg.Chat.SendBurst)
	}

	router := handler.NewRouter(chatService, limiter, reg)

	startServer(ctx, cfg.Server, router)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := chatService.Shutdown(shutdownCtx); err != nil {
		log.Printf("warning: %v", err)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("mustafizur chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
