package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/config"
	"github.com/tallybook-dev/tallybook/internal/logger"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/notify"
	"github.com/tallybook-dev/tallybook/internal/schedule"
	"github.com/tallybook-dev/tallybook/internal/store"
)

// Reminder messages flow through one durable queue; consumers bind by name.
const (
	remindersExchange = "tallybook"
	remindersQueue    = "tallybook.reminders"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	dataDir string
	debug   bool
}

func (o *rootOptions) logger() zerolog.Logger {
	log := logger.New()
	if o.debug {
		return log.Level(zerolog.DebugLevel)
	}
	return log.Level(zerolog.InfoLevel)
}

// book is an opened data directory: loaded config plus the store behind it.
type book struct {
	dir   string
	cfg   *config.Config
	store *store.Store
	log   zerolog.Logger
}

// openBook loads the config in the data directory and opens its database.
func (o *rootOptions) openBook() (*book, error) {
	dir, err := filepath.Abs(o.dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no book at %s, run 'tallybook init' first", dir)
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	storePath := cfg.Storage.Path
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(dir, storePath)
	}
	s, err := store.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &book{dir: dir, cfg: cfg, store: s, log: o.logger()}, nil
}

func (b *book) Close() error {
	return b.store.Close()
}

// accountService loads the chart snapshot for lookups.
func (b *book) accountService(ctx context.Context) (*accounts.Service, error) {
	accts, err := b.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return accounts.NewService(accts), nil
}

// resolveAccount accepts an account ID or an exact account name.
func (b *book) resolveAccount(ctx context.Context, ref string) (model.Account, error) {
	svc, err := b.accountService(ctx)
	if err != nil {
		return model.Account{}, err
	}
	if acct, ok := svc.Get(ref); ok {
		return acct, nil
	}
	if acct, ok := svc.ByName(ref); ok {
		return acct, nil
	}
	return model.Account{}, fmt.Errorf("no account with id or name %q", ref)
}

// newScheduler returns the AMQP scheduler when a broker is configured, the
// log-only scheduler otherwise.
func (b *book) newScheduler() (notify.Scheduler, error) {
	if url := b.cfg.Reminders.AMQPURL; url != "" {
		return notify.NewAMQPScheduler(url, remindersExchange, remindersQueue, b.log)
	}
	return notify.NewLogScheduler(b.log), nil
}

// reminderPolicy applies the configured fire hour over the defaults.
func (b *book) reminderPolicy() schedule.ReminderPolicy {
	policy := schedule.DefaultReminderPolicy()
	if h := b.cfg.Reminders.FireHour; h >= 1 && h <= 23 {
		policy.FireHour = h
	}
	return policy
}

// money renders an amount with the book's currency.
func (b *book) money(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + b.cfg.Book.Currency
}
