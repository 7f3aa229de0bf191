package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diillson/relatorio-pipeline-go/internal/application/usecase"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
	"github.com/diillson/relatorio-pipeline-go/pkg/version"
)

// ConfigLoader resolve a configuração do pipeline.
type ConfigLoader func() (*types.Config, error)

// PipelineBuilder monta o caso de uso a partir da configuração resolvida.
type PipelineBuilder func(cfg *types.Config) (*usecase.PipelineUseCase, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd      *cobra.Command
	loadConfig   ConfigLoader
	buildUseCase PipelineBuilder
	showBanner   bool
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(loadConfig ConfigLoader, buildUseCase PipelineBuilder) *CLIApp {
	app := &CLIApp{
		loadConfig:   loadConfig,
		buildUseCase: buildUseCase,
		showBanner:   true,
	}

	rootCmd := &cobra.Command{
		Use:   "relatorio-pipeline",
		Short: "Limpa, valida e exporta o relatório de compras",
		Long: `Lê o relatório de compras (CAMINHO_ENTRADA), gera o relatório de qualidade,
aplica as regras de limpeza, valida o resultado e exporta relatorio_limpo em
CSV, Parquet e JSON para CAMINHO_SAIDA.

Configuração por variáveis de ambiente, arquivo .env ou CAMINHO_CONFIG
(TOML, YAML ou JSON).`,
		Version:       version.FormatVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "Relatório Pipeline version: %s\n" .Version}}`)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs define os argumentos da linha de comando (usado em testes).
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// DisableBanner desliga o banner de boas-vindas.
func (app *CLIApp) DisableBanner() {
	app.showBanner = false
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	if app.showBanner {
		displayWelcomeBanner(cmd.OutOrStdout(), version.FormatVersion())
	}

	cfg, err := app.loadConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	pipeline, err := app.buildUseCase(cfg)
	if err != nil {
		return err
	}

	_, err = pipeline.Run(cmd.Context(), cfg)
	return err
}
