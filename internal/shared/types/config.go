package types

import "time"

// Config é a configuração do pipeline, resolvida uma única vez na inicialização
// a partir de valores padrão, arquivo de configuração, .env e variáveis de ambiente.
type Config struct {
	MinPurchaseValue float64  `mapstructure:"valor_minimo_compra" json:"valor_minimo_compra" yaml:"valor_minimo_compra" toml:"valor_minimo_compra"`
	InputPath        string   `mapstructure:"caminho_entrada" json:"caminho_entrada" yaml:"caminho_entrada" toml:"caminho_entrada"`
	OutputDir        string   `mapstructure:"caminho_saida" json:"caminho_saida" yaml:"caminho_saida" toml:"caminho_saida"`
	DocsDir          string   `mapstructure:"caminho_docs" json:"caminho_docs" yaml:"caminho_docs" toml:"caminho_docs"`
	QualityReport    bool     `mapstructure:"relatorio_qualidade" json:"relatorio_qualidade" yaml:"relatorio_qualidade" toml:"relatorio_qualidade"`
	InputEncoding    string   `mapstructure:"codificacao_entrada" json:"codificacao_entrada" yaml:"codificacao_entrada" toml:"codificacao_entrada"`
	Delimiter        string   `mapstructure:"delimitador" json:"delimitador" yaml:"delimitador" toml:"delimitador"`
	DateLayouts      []string `mapstructure:"formatos_data" json:"formatos_data" yaml:"formatos_data" toml:"formatos_data"`
	PublishURI       string   `mapstructure:"destino_publicacao" json:"destino_publicacao" yaml:"destino_publicacao" toml:"destino_publicacao"`
	MetricsPath      string   `mapstructure:"caminho_metricas" json:"caminho_metricas" yaml:"caminho_metricas" toml:"caminho_metricas"`
	ConfigFile       string   `mapstructure:"caminho_config" json:"-" yaml:"-" toml:"-"`
}

// DelimiterRune retorna o delimitador como rune, com vírgula como padrão.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// DefaultDateLayouts são os formatos aceitos para data_compra quando FORMATOS_DATA não é informado.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
}
