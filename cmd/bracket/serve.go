package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bracket/config"
	"bracket/engine"
	"bracket/magiclink"
	"bracket/messaging"
	"bracket/store"
	"bracket/www"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const purgeInterval = time.Hour

func newServeCommand(root *rootOptions) *cobra.Command {
	var port int
	var logMail bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port > 0 {
				cfg.Web.Port = port
			}
			return serve(cfg, root.debug, logMail)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides config)")
	cmd.Flags().BoolVar(&logMail, "log-mail", false, "log login links from the mail topic instead of relying on a mailer")
	return cmd
}

func serve(cfg *config.Config, debug, logMail bool) error {
	db, err := store.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var limiter magiclink.Limiter
	if cfg.Redis.Address != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = magiclink.NewRedisLimiter(rdb, cfg.MagicLink.MaxSends, cfg.MagicLink.SendWindow)
		log.Printf("login links rate limited via redis at %s", cfg.Redis.Address)
	} else {
		limiter = magiclink.NewStoreLimiter(db, cfg.MagicLink.MaxSends, cfg.MagicLink.SendWindow, nil)
	}

	auth := magiclink.NewLocal(db, magiclink.Options{
		BaseURL:   cfg.Web.BaseURL,
		TTL:       cfg.MagicLink.TTL,
		MailTopic: cfg.Messaging.MailTopic,
		Limiter:   limiter,
	})

	eng := engine.New(engine.Config{
		AppConfig: cfg,
		DB:        db,
		Auth:      auth,
		LogFunc:   log.Printf,
		Debug:     debug,
	})
	eng.Start()
	defer eng.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Login emails wait in the outbox until the broker is reachable.
	msgClient := messaging.NewClient(&cfg.Messaging)
	defer msgClient.Close()
	if err := msgClient.Connect(); err != nil {
		log.Printf("messaging connect: %v (login links stay queued)", err)
	} else if logMail {
		if err := messaging.LogMail(ctx, msgClient, cfg.Messaging.MailTopic, log.Printf); err != nil {
			log.Printf("mail log subscribe: %v", err)
		}
	}
	drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval, log.Printf)
	drainer.Start()
	defer drainer.Stop()

	go purgeLinks(ctx, db)

	router, stopWeb := www.NewRouter(eng)
	defer stopWeb()

	addr := cfg.Addr()
	server := &http.Server{Addr: addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("bracket listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	log.Println("Shutting down...")

	// SSE streams hold connections open; end them before Shutdown waits.
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}
	return nil
}

// purgeLinks deletes expired login links once an hour.
func purgeLinks(ctx context.Context, db *store.DB) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PurgeExpiredMagicLinks(time.Now())
			if err != nil {
				log.Printf("purge login links: %v", err)
			} else if n > 0 {
				log.Printf("purged %d expired login links", n)
			}
		}
	}
}
