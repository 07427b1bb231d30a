package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tecnoperfil/portal-agent/internal/agent"
	"github.com/tecnoperfil/portal-agent/internal/app"
	"github.com/tecnoperfil/portal-agent/internal/config"
	"github.com/tecnoperfil/portal-agent/internal/log"
)

var askPersona string

var askCmd = &cobra.Command{
	Use:   "ask [pergunta]",
	Short: "Faz uma pergunta ao assistente",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askPersona, "persona", "", "persona da resposta (pcp, vendas, producao, ferramentaria)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(log.Config{Level: slog.LevelWarn})

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	question := strings.Join(args, " ")
	answer, err := a.Composer.Compose(ctx, question, agent.ParsePersona(askPersona))
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Fontes:")
		for _, src := range answer.Sources {
			fmt.Printf("  - %s\n", src)
		}
	}
	return nil
}
