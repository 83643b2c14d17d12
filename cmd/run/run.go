package run

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v6"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Javohir11011/Hisob-kitob-bot/auth"
	"github.com/Javohir11011/Hisob-kitob-bot/bot/telegram"
	"github.com/Javohir11011/Hisob-kitob-bot/ledger"
	"github.com/Javohir11011/Hisob-kitob-bot/service"
	"github.com/Javohir11011/Hisob-kitob-bot/storage/db"
	"github.com/Javohir11011/Hisob-kitob-bot/storage/directory"
)

type Config struct {
	Bot        telegram.Config
	Handler    service.Config
	DBLocation string `env:"DB_LOCATION" envDefault:"/var/sqlite/store.db"`
}

func (c Config) String() string {
	res, _ := json.Marshal(&c)
	return string(res)
}

func Run() error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Printf("Starting with options: %s\n", cfg.String())

	sqlDB, err := sqlx.Connect("sqlite3", cfg.DBLocation)
	if err != nil {
		return fmt.Errorf("connect DB: %w", err)
	}
	driver, err := sqlite3.WithInstance(sqlDB.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("new sqlite3 migration driver: %w", err)
	}
	store, err := db.New(sqlDB, driver, "")
	if err != nil {
		return fmt.Errorf("new db store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	client, err := telegram.NewClient(cfg.Bot)
	if err != nil {
		return fmt.Errorf("new telegram client: %w", err)
	}
	log.Printf("Authorized as @%s", client.Self())

	serviceHandler := service.New(cfg.Handler, service.Stores{
		Sessions: store,
		Accounts: store,
		Shops:    store,
		Debtors:  store,
		Debts:    store,
	}, directory.New(store, store), ledger.New(store), auth.NewBcryptHasher(), client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.ServiceBot(serviceHandler).ListenAndServe(ctx); err != nil {
		return fmt.Errorf("ListenAndServe: %w", err)
	}

	return nil
}
