package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/diillson/relatorio-pipeline-go/internal/domain/repository"
	"github.com/diillson/relatorio-pipeline-go/internal/shared/types"
)

// Chaves de configuração lidas do ambiente.
const (
	KeyMinPurchaseValue = "VALOR_MINIMO_COMPRA"
	KeyInputPath        = "CAMINHO_ENTRADA"
	KeyOutputDir        = "CAMINHO_SAIDA"
	KeyDocsDir          = "CAMINHO_DOCS"
	KeyQualityReport    = "RELATORIO_QUALIDADE"
	KeyInputEncoding    = "CODIFICACAO_ENTRADA"
	KeyDelimiter        = "DELIMITADOR"
	KeyDateLayouts      = "FORMATOS_DATA"
	KeyPublishURI       = "DESTINO_PUBLICACAO"
	KeyMetricsPath      = "CAMINHO_METRICAS"
	KeyConfigFile       = "CAMINHO_CONFIG"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMinPurchaseValue, 10.0)
	v.SetDefault(KeyInputPath, "relatorio.csv")
	v.SetDefault(KeyOutputDir, "output/")
	v.SetDefault(KeyDocsDir, "docs")
	v.SetDefault(KeyQualityReport, true)
	v.SetDefault(KeyInputEncoding, "utf-8")
	v.SetDefault(KeyDelimiter, ",")
	v.SetDefault(KeyDateLayouts, types.DefaultDateLayouts)
	v.SetDefault(KeyPublishURI, "")
	v.SetDefault(KeyMetricsPath, "")
	v.SetDefault(KeyConfigFile, "")
}

// LoadPipelineConfig resolve a configuração uma única vez, na ordem de precedência:
// variáveis de ambiente (incluindo .env) > arquivo CAMINHO_CONFIG > valores padrão.
func LoadPipelineConfig(configRepo repository.ConfigRepository, console types.ConsoleInterface) (*types.Config, error) {
	loadEnvFile(console)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString(KeyConfigFile)); path != "" {
		values, err := configRepo.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("error merging config file: %w", err)
		}
		console.LogInfo("Arquivo de configuração carregado: %s", path)
	}

	cfg := &types.Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func normalize(cfg *types.Config) error {
	cfg.InputPath = strings.TrimSpace(cfg.InputPath)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	cfg.DocsDir = strings.TrimSpace(cfg.DocsDir)

	if cfg.InputPath == "" {
		return fmt.Errorf("%s must not be empty", KeyInputPath)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%s must not be empty", KeyOutputDir)
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = "docs"
	}
	if n := utf8.RuneCountInString(cfg.Delimiter); n > 1 {
		return fmt.Errorf("%s must be a single character, got %q", KeyDelimiter, cfg.Delimiter)
	}

	layouts := make([]string, 0, len(cfg.DateLayouts))
	for _, l := range cfg.DateLayouts {
		if l = strings.TrimSpace(l); l != "" {
			layouts = append(layouts, l)
		}
	}
	if len(layouts) == 0 {
		layouts = types.DefaultDateLayouts
	}
	cfg.DateLayouts = layouts
	return nil
}

// loadEnvFile carrega o .env do diretório atual ou do diretório pai.
// Variáveis já definidas no ambiente não são sobrescritas.
func loadEnvFile(console types.ConsoleInterface) {
	cwd, err := os.Getwd()
	if err != nil {
		console.LogWarning("Não foi possível obter o diretório atual: %v", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err != nil {
			continue
		}
		if err := godotenv.Load(location); err != nil {
			console.LogWarning("Não foi possível carregar %s: %v", location, err)
			continue
		}
		console.LogInfo("Arquivo .env carregado de: %s", location)
		return
	}
}
