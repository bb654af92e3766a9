package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env-required:"true"`
	ProjectsDir string `yaml:"projects_dir" env-default:"./projects"`
	HTTPServer  `yaml:"http_server"`
	Gallery     `yaml:"gallery"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env-default:"localhost:3001"`
	Timeout      time.Duration `yaml:"timeout" env-default:"4s"`
	IddleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigins  string        `yaml:"cors_origins" env-default:"*"`
}

type Gallery struct {
	PageSize    int           `yaml:"page_size" env-default:"20"`
	MaxPageSize int           `yaml:"max_page_size" env-default:"200"`
	CacheMaxAge time.Duration `yaml:"cache_max_age" env-default:"1h"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
