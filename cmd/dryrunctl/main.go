// dryrunctl — инструмент командной строки для dry-run планировщика.
//
// Использование:
//
//	dryrunctl [--config FILE] [--json] <command> [flags]
//
// Команды:
//
//	partitions  Список партиций
//	poll        Один тик планировщика
//	state       Timestamp последней публикации
//	wait        Выполнение wait-задачи
//	versions    Версии артефакта
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/app"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/cli"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/config"
	"github.com/osoriano/spinnaker-dry-run-plugins/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "dryrunctl",
		Short:         "dryrunctl — dry-run artifact scheduler tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (default: $DRYRUN_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	var rt *app.Runtime
	runtimeFn := func(ctx context.Context) (*app.Runtime, error) {
		if rt != nil {
			return rt, nil
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		built, err := app.Build(ctx, cfg, app.Options{
			// Логи в stderr, чтобы не смешивать с --json выводом
			Logger:     telemetry.NewLogger(os.Stderr, telemetry.LogLevel(), os.Getenv("LOG_FORMAT")),
			Registerer: prometheus.NewRegistry(),
		})
		if err != nil {
			return nil, err
		}
		rt = built
		return rt, nil
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewPartitionsCmd(runtimeFn, outputFn),
		cli.NewPollCmd(runtimeFn, outputFn),
		cli.NewStateCmd(runtimeFn, outputFn),
		cli.NewWaitCmd(runtimeFn, outputFn, nil),
		cli.NewVersionsCmd(runtimeFn, outputFn),
		cli.NewConstraintCmd(runtimeFn, outputFn),
	)

	err := rootCmd.ExecuteContext(context.Background())
	if rt != nil {
		rt.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
