package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/maltedev/boycott-detector/internal/api"
	"github.com/maltedev/boycott-detector/internal/detector"
	"github.com/maltedev/boycott-detector/internal/logger"
	"github.com/maltedev/boycott-detector/internal/models"
	"github.com/maltedev/boycott-detector/internal/personal"
	"github.com/maltedev/boycott-detector/internal/tui"
	"github.com/spf13/cobra"
)

func runShell(cmd *cobra.Command, args []string) error {
	log, logFile, err := logger.NewFile(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(log)

	fmt.Fprintln(cmd.OutOrStdout(), "Loading boycott lists...")

	session, err := newSession(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(session, cfg.CheckBudget()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("shell exited with error: %w", err)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := stderrLogger()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CheckBudget())
	defer cancel()

	session, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}

	res, err := session.Check(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.CheckResponse{
			ID:      res.ID.String(),
			Product: res.Record,
			Verdict: res.Verdict,
			Text:    res.Text(),
		})
	}

	fmt.Fprintln(out, res.Text())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	log := stderrLogger()

	names, err := newFetcher(cfg, log).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runPersonalList(cmd *cobra.Command, args []string) error {
	list, err := personal.Load(cfg.Personal.Path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range list.Names() {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runPersonalAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("company name is empty")
	}
	if name == models.Unknown {
		return detector.ErrUnknownManufacturer
	}

	store, err := personal.Open(cfg.Personal.Path)
	if err != nil {
		return err
	}

	added, err := store.Add(name)
	if err != nil {
		return err
	}

	if added {
		fmt.Fprintf(cmd.OutOrStdout(), "%s was added to your personal boycott list.\n", name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already in your personal boycott list.\n", name)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log := stderrLogger()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session, err := newSession(ctx, cfg, log)
	if err != nil {
		return err
	}

	handlers := api.NewHandlers(session, log)

	addr := listenTo
	if addr == "" {
		addr = net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handlers, cfg.CheckBudget()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigChan:
		case <-ctx.Done():
		}

		log.Info("shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("server starting", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
