package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quantum-chat/internal/auth"
	"quantum-chat/internal/chat"
	"quantum-chat/internal/config"
	"quantum-chat/internal/logging"
	"quantum-chat/internal/quantum"
	"quantum-chat/internal/session"
	"quantum-chat/internal/storage"
)

// app carries what every subcommand needs once flags and env are parsed.
type app struct {
	envFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
}

func (a *app) init(cmd *cobra.Command) error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogFilePath, cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger
	a.log.Debug("config loaded",
		zap.String("chat_url", cfg.ChatURL),
		zap.String("execute_url", cfg.ExecuteURL),
		zap.String("conversations_dir", cfg.ConversationsDir),
		zap.String("command", cmd.Name()),
	)
	return nil
}

func (a *app) close() {
	if a.log != nil {
		a.log.Debug("quantumchat exiting")
		_ = a.log.Sync()
	}
}

func (a *app) remote() *quantum.Client {
	return quantum.New(quantum.Options{
		ChatURL:        a.cfg.ChatURL,
		ExecuteURL:     a.cfg.ExecuteURL,
		ChatTimeout:    a.cfg.ChatTimeout,
		ExecuteTimeout: a.cfg.ExecuteTimeout,
		Logger:         a.log.Named("quantum"),
	})
}

func (a *app) store() (*storage.FileStore, error) {
	return storage.NewFileStore(a.cfg.ConversationsDir)
}

// newSession starts a session, seeding it with the configured key when that
// key is well formed.
func (a *app) newSession() *session.State {
	st := session.New()
	if a.cfg.APIKey != "" && st.SetKey(a.cfg.APIKey) != session.KeyValid {
		a.warnBadKey(a.cfg.APIKey)
	}
	return st
}

// keyedSession is newSession for the one-shot commands: the key goes through
// orc so its status is reported to the user.
func (a *app) keyedSession(orc *chat.Orchestrator, key string) *session.State {
	st := session.New()
	if key == "" {
		key = a.cfg.APIKey
	}
	if key != "" && orc.ChangeKey(st, key) != session.KeyValid {
		a.warnBadKey(key)
	}
	return st
}

func (a *app) warnBadKey(key string) {
	a.log.Warn("api key ignored: bad format", zap.String("key", auth.Mask(key)))
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
