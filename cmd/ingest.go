package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tecnoperfil/portal-agent/internal/app"
	"github.com/tecnoperfil/portal-agent/internal/config"
	"github.com/tecnoperfil/portal-agent/internal/log"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [arquivo...]",
	Short: "Ingere documentos no portal",
	Long: `Ingere um ou mais arquivos (.txt, .md, .csv, .xlsx, .pdf, .docx).
Planilhas reconhecidas como carteira de encomendas ou cadastro de
ferramentas também alimentam as tabelas estruturadas.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(log.Config{Level: slog.LevelInfo})

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		result, err := a.Pipeline.Ingest(ctx, filepath.Base(path), data)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		fmt.Printf("%s: documento %s (%d caracteres)", path, result.DocumentID, result.Characters)
		if result.RowsUpserted > 0 {
			fmt.Printf(", %d linha(s) estruturada(s) [%s]", result.RowsUpserted, result.Shape)
		}
		if result.Degraded {
			fmt.Print(" — embedding indisponível, busca semântica degradada")
		}
		fmt.Println()
	}
	return nil
}
