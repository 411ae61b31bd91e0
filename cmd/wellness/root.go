package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/wellnessbuddy/wellness-platform/internal/client"
	appconfig "github.com/wellnessbuddy/wellness-platform/internal/config"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// app carries state shared by every command.
type app struct {
	apiURL     string
	cachePath  string
	token      string
	revealWait time.Duration
	now        func() time.Time
	stdin      io.Reader

	// newClient is replaced in tests.
	newClient func(a *app) (*client.Client, func(), error)
}

func newApp() *app {
	return &app{
		now:       time.Now,
		stdin:     os.Stdin,
		newClient: openClient,
	}
}

func openClient(a *app) (*client.Client, func(), error) {
	cache, err := client.OpenSQLiteCache(a.cachePath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewWithWriter(os.Getenv("LOG_LEVEL"), os.Stderr)
	c := client.New(a.apiURL, cache, client.WithToken(a.token), client.WithLogger(logger), client.WithClock(a.now))
	return c, func() { _ = cache.Close() }, nil
}

func newRootCmd(a *app) *cobra.Command {
	cfg := appconfig.Load()
	defaultCache := cfg.OfflineDBPath
	if home, err := os.UserHomeDir(); err == nil && !filepath.IsAbs(defaultCache) {
		defaultCache = filepath.Join(home, ".wellness-buddy", defaultCache)
	}

	root := &cobra.Command{
		Use:   "wellness",
		Short: "Wellness Buddy - track moods and talk things through",
		Long: `Wellness Buddy tracks your moods, chats with you, and suggests
small plans for the days ahead.

When the API is unreachable every command keeps working from a local cache.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", cfg.APIBaseURL, "API base URL")
	root.PersistentFlags().StringVar(&a.cachePath, "cache", defaultCache, "offline cache database")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("WELLNESS_TOKEN"), "bearer token from 'wellness login'")
	root.PersistentFlags().DurationVar(&a.revealWait, "reveal-delay", cfg.RevealDelay, "delay between revealed characters in chat")

	root.AddCommand(
		sampleCmd(a),
		insightsCmd(a),
		logCmd(a),
		scanCmd(a),
		chatCmd(a),
		planCmd(a),
		quoteCmd(a),
		emergencyCmd(a),
		loginCmd(a),
	)
	return root
}

// withClient opens a client for the duration of fn.
func (a *app) withClient(fn func(c *client.Client) error) error {
	c, closeFn, err := a.newClient(a)
	if err != nil {
		return fmt.Errorf("open client: %w", err)
	}
	defer closeFn()
	return fn(c)
}

func offlineNote(w io.Writer, offline bool) {
	if offline {
		fmt.Fprintln(w, "(offline: showing local data)")
	}
}
