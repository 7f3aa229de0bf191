package repository

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	// LoadConfigFile lê um arquivo TOML, YAML ou JSON e devolve suas chaves em minúsculas.
	LoadConfigFile(filePath string) (map[string]interface{}, error)
}
