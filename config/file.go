package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "configs/config.yaml"

func configFilePath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return defaultConfigFile
}

// loadFile overlays the YAML file at path onto cfg. A missing default file is
// not an error; a missing file named by CONFIG_FILE is.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("CONFIG_FILE") == "" {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv loads .env for local development. Existing variables win and a
// missing file is ignored.
func loadDotEnv() {
	path := os.Getenv("DOTENV_FILE")
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
}
