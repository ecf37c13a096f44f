package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"relicnotify/internal/config"
	"relicnotify/internal/credentials"
	"relicnotify/internal/history"
	"relicnotify/internal/logging"
)

type commandContext struct {
	configFlag *string
	scopeFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, scopeFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		scopeFlag:  scopeFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) scope() string {
	if c.scopeFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.scopeFlag)
}

func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, cmd.ErrOrStderr())
}

func (c *commandContext) credentialStore() (*credentials.FileStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return credentials.NewFileStore(cfg.Paths.CredentialsFile), nil
}

// credentialResolver checks the process environment before the credentials
// file so CI-injected keys override stored ones.
func (c *commandContext) credentialResolver() (credentials.Resolver, error) {
	store, err := c.credentialStore()
	if err != nil {
		return nil, err
	}
	return credentials.Chain{credentials.Env{}, store}, nil
}

// openHistory opens the history store and prunes rows past retention.
func (c *commandContext) openHistory(ctx context.Context, logger *slog.Logger) (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(ctx, cfg.Paths.HistoryDB)
	if err != nil {
		return nil, err
	}
	if days := cfg.History.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if removed, err := store.Prune(ctx, cutoff); err != nil {
			logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "old history rows kept"),
			)
		} else if removed > 0 {
			logger.Debug("pruned history", logging.Int("attempts", int(removed)))
		}
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
