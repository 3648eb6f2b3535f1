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

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/joestump/blockprompt/internal/config"
	"github.com/joestump/blockprompt/internal/db"
	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/handler"
	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			reg, err := registry.LoadFile(cfg.Registry.File, cfg.Registry.DefaultTemplate)
			if err != nil {
				return err
			}

			provider, err := llm.New(cfg)
			if err != nil {
				return err
			}
			if provider == nil {
				log.Printf("serve: no LLM provider configured; generation endpoints return 503")
			}
			orch := generate.NewOrchestrator(reg, provider, generate.Options{
				DefaultModel: cfg.LLM.DefaultModel,
				Temperature:  cfg.LLM.Temperature,
				Timeout:      cfg.LLM.Timeout,
			})

			sessions := session.NewManager()
			stopSweeper, err := sessions.StartSweeper(cfg.Session.Sweep, cfg.Session.IdleTTL)
			if err != nil {
				return err
			}
			defer stopSweeper()

			history := store.NewHistoryStore(database)
			stopPruner, err := startHistoryPruner(history, cfg.Session.Sweep, cfg.History.Retain)
			if err != nil {
				return err
			}
			defer stopPruner()

			router := handler.NewRouter(handler.Deps{
				SessionManager: handler.NewSessionManager(database, cfg.DB.Driver, cfg.Session.Lifetime, cfg.InsecureCookies),
				Registry:       reg,
				Orchestrator:   orch,
				Sessions:       sessions,
				SavedPrompts:   store.NewSavedPromptStore(database),
				History:        history,
				DefaultModel:   cfg.LLM.DefaultModel,
			})

			srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", cfg.HTTP.Addr)
				errCh <- srv.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-sigCh:
			}

			log.Println("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

// startHistoryPruner trims the prompt history to retain entries on
// schedule. A retain of 0 disables pruning.
func startHistoryPruner(history *store.HistoryStore, schedule string, retain int) (func(), error) {
	if retain == 0 {
		return func() {}, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := history.Prune(context.Background(), retain)
		if err != nil {
			log.Printf("serve: prune history: %v", err)
			return
		}
		if n > 0 {
			log.Printf("serve: pruned %d history entries", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
