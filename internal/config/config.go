package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/nirik/fas/internal/domain"
)

type Config struct {
	Accounts domain.Config `yaml:"accounts"`
	Server   Server        `yaml:"server"`
}

type Server struct {
	Listen            string        `yaml:"listen"`
	PostgresDsn       string        `yaml:"postgresDsn"`
	RedisAddr         string        `yaml:"redisAddr"`
	RedisDB           int           `yaml:"redisDB"`
	MemcachedAddr     string        `yaml:"memcachedAddr"`
	AmqpURL           string        `yaml:"amqpURL"`
	MailQueue         string        `yaml:"mailQueue"`
	KafkaBrokers      []string      `yaml:"kafkaBrokers"`
	KafkaTopic        string        `yaml:"kafkaTopic"`
	EnableTrace       bool          `yaml:"enableTrace"`
	TraceEndpoint     string        `yaml:"traceEndpoint"`
	SessionTTL        time.Duration `yaml:"sessionTTL"`
	MailRatePerSecond float64       `yaml:"mailRatePerSecond"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Server.MailQueue == "" {
		c.Server.MailQueue = "fas.mail"
	}
	if c.Server.KafkaTopic == "" {
		c.Server.KafkaTopic = "fas.audit"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 24 * time.Hour
	}
	if c.Server.MailRatePerSecond == 0 {
		c.Server.MailRatePerSecond = 5
	}
	if c.Accounts.ClaMetaGroup == "" {
		c.Accounts.ClaMetaGroup = "cla_done"
	}
}

func (c Config) Validate() error {
	switch {
	case c.Accounts.ClaGroup == "":
		return fmt.Errorf("accounts.claGroup is required")
	case c.Accounts.LegalEmail == "":
		return fmt.Errorf("accounts.legalEmail is required")
	case c.Accounts.AccountsEmail == "":
		return fmt.Errorf("accounts.accountsEmail is required")
	case c.Server.PostgresDsn == "":
		return fmt.Errorf("server.postgresDsn is required")
	}
	return nil
}
