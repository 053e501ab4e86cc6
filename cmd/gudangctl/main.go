package main

import (
	"fmt"
	"io"
	"os"

	"gudang/internal/bootstrap"
	"gudang/internal/cli"
	"gudang/internal/config"
	"gudang/internal/services"
	"gudang/pkg/logger"
	"gudang/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if !v.IsSet("LOG_LEVEL") {
		level = "warn"
	}
	logger.InitWithWriter("gudangctl", level, os.Stderr)

	app := &cli.App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Open: func() (*services.InventoryService, func() error, error) {
			store, err := bootstrap.Open(cfg, bootstrap.Options{Publish: true})
			if err != nil {
				return nil, nil, err
			}
			return store.Inventory, store.Close, nil
		},
	}
	if cfg.AuthSecret != "" {
		app.Tokens = services.NewTokenService(cfg.AuthSecret, cfg.TokenTTL)
	}
	if cfg.RabbitMQURL != "" {
		app.Watch = func(out io.Writer) error {
			mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
			if err != nil {
				return err
			}
			defer mq.Close()
			return mq.ConsumeChanges(func(msg rabbitmq.ChangeMessage) error {
				_, err := fmt.Fprintln(out, msg.Line)
				return err
			})
		}
	}

	os.Exit(app.Run(os.Args[1:]))
}
