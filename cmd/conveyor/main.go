// Conveyor CLI — инструмент командной строки для отправки plans
// и управления job, воркерами и очередями.
//
// Использование:
//
//	conveyor [--addr HOST:PORT] [--session-key KEY] [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	plan    Отправка, проверка и локальный запуск plans
//	job     Статус, вывод и отмена job
//	worker  Воркеры и их остановка
//	queue   Длины очередей
//	watch   Поток событий job из RabbitMQ
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/cli"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/resp"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var (
		addr       string
		sessionKey string
		apiURL     string
		amqpURL    string
		jsonOutput bool
	)

	rootCmd := &cobra.Command{
		Use:           "conveyor",
		Short:         "Conveyor CLI — distributed task execution",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&addr, "addr", envOr("CONVEYOR_ADDR", "127.0.0.1:6380"), "Server protocol address")
	flags.StringVar(&sessionKey, "session-key", os.Getenv("CONVEYOR_SESSION_KEY"), "Session key")
	flags.StringVar(&apiURL, "api-url", envOr("CONVEYOR_API_URL", "http://localhost:8080"), "Admin API URL")
	flags.StringVar(&amqpURL, "amqp-url", envOr("RABBITMQ_URL", mq.DefaultURL()), "RabbitMQ URL for watch")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }
	// Флаги разбираются после сборки команд, поэтому адрес читается при вызове.
	sessionFn := func(ctx context.Context) (*resp.Client, error) {
		return cli.Dialer(addr, sessionKey)(ctx)
	}

	rootCmd.AddCommand(
		cli.NewPlanCmd(sessionFn, outputFn),
		cli.NewJobCmd(sessionFn, outputFn),
		cli.NewWorkerCmd(clientFn, sessionFn, outputFn),
		cli.NewQueueCmd(clientFn, outputFn),
		cli.NewWatchCmd(func() string { return amqpURL }, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
