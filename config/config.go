package config

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Language string `yaml:"language"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig local register API server
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig durable key-value store.
// Type is "bolt" (default, file under workdir) or "postgres" (gorm, kv_entry table).
type StorageConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
	Dsn  string `yaml:"dsn"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// ReceiptConfig receipt delivery
type ReceiptConfig struct {
	PrinterDir string `yaml:"printer_dir"`
	PoolSize   int    `yaml:"pool_size"`
	SmtpHost   string `yaml:"smtp_host"`
	SmtpPort   int    `yaml:"smtp_port"`
	SmtpUser   string `yaml:"smtp_user"`
	SmtpPwd    string `yaml:"smtp_pwd"`
	MailFrom   string `yaml:"mail_from"`
	MailTo     string `yaml:"mail_to"`
}

// InsightConfig AI sales insight endpoint (OpenAI compatible chat completion API)
type InsightConfig struct {
	Endpoint string `yaml:"endpoint"`
	ApiKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  int    `yaml:"timeout"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system"`
	Web     WebConfig     `yaml:"web"`
	Storage StorageConfig `yaml:"storage"`
	Logger  LogConfig     `yaml:"logger"`
	Receipt ReceiptConfig `yaml:"receipt"`
	Insight InsightConfig `yaml:"insight"`
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetBackupDir() string {
	return path.Join(c.System.Workdir, "backup")
}

func (c *AppConfig) GetReceiptDir() string {
	if c.Receipt.PrinterDir != "" {
		return c.Receipt.PrinterDir
	}
	return path.Join(c.System.Workdir, "receipts")
}

// GetStoragePath bolt database file
func (c *AppConfig) GetStoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return path.Join(c.GetDataDir(), "toughpos.db")
}

func (c *AppConfig) initDirs() {
	for _, dir := range []string{c.GetDataDir(), c.GetLogDir(), c.GetBackupDir(), c.GetReceiptDir()} {
		_ = os.MkdirAll(dir, 0o755)
	}
}

// DefaultAppConfig returns the configuration used when no file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "ToughPOS",
			Location: "America/Sao_Paulo",
			Language: "pt-BR",
			Workdir:  "/var/toughpos",
			Debug:    true,
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 1870,
		},
		Storage: StorageConfig{
			Type: "bolt",
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: true,
			Filename:   "/var/toughpos/logs/toughpos.log",
		},
		Receipt: ReceiptConfig{
			PoolSize: 4,
			SmtpPort: 587,
		},
		Insight: InsightConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  30,
		},
	}
}

// LoadConfig reads the YAML file (if any), applies TOUGHPOS_* environment
// overrides and creates the work directories.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile == "" {
		cfile = "toughpos.yml"
		if _, err := os.Stat(cfile); err != nil {
			cfile = "/etc/toughpos.yml"
		}
	}
	if data, err := os.ReadFile(cfile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "read config %s", cfile)
	}
	applyEnv(cfg)
	cfg.initDirs()
	return cfg, nil
}

// WriteConfig dumps cfg as YAML to filename
func WriteConfig(cfg *AppConfig, filename string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func setEnvValue(name string, apply func(v string)) {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		apply(strings.TrimSpace(v))
	}
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("TOUGHPOS_SYSTEM_WORKER_DIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("TOUGHPOS_SYSTEM_LOCATION", func(v string) { cfg.System.Location = v })
	setEnvValue("TOUGHPOS_SYSTEM_LANGUAGE", func(v string) { cfg.System.Language = v })
	setEnvValue("TOUGHPOS_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = cast.ToBool(v) })
	setEnvValue("TOUGHPOS_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("TOUGHPOS_WEB_PORT", func(v string) { cfg.Web.Port = cast.ToInt(v) })
	setEnvValue("TOUGHPOS_STORAGE_TYPE", func(v string) { cfg.Storage.Type = v })
	setEnvValue("TOUGHPOS_STORAGE_PATH", func(v string) { cfg.Storage.Path = v })
	setEnvValue("TOUGHPOS_STORAGE_DSN", func(v string) { cfg.Storage.Dsn = v })
	setEnvValue("TOUGHPOS_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })
	setEnvValue("TOUGHPOS_LOGGER_FILE_ENABLE", func(v string) { cfg.Logger.FileEnable = cast.ToBool(v) })
	setEnvValue("TOUGHPOS_LOGGER_FILENAME", func(v string) { cfg.Logger.Filename = v })
	setEnvValue("TOUGHPOS_RECEIPT_PRINTER_DIR", func(v string) { cfg.Receipt.PrinterDir = v })
	setEnvValue("TOUGHPOS_RECEIPT_POOL_SIZE", func(v string) { cfg.Receipt.PoolSize = cast.ToInt(v) })
	setEnvValue("TOUGHPOS_SMTP_HOST", func(v string) { cfg.Receipt.SmtpHost = v })
	setEnvValue("TOUGHPOS_SMTP_PORT", func(v string) { cfg.Receipt.SmtpPort = cast.ToInt(v) })
	setEnvValue("TOUGHPOS_SMTP_USER", func(v string) { cfg.Receipt.SmtpUser = v })
	setEnvValue("TOUGHPOS_SMTP_PWD", func(v string) { cfg.Receipt.SmtpPwd = v })
	setEnvValue("TOUGHPOS_INSIGHT_ENDPOINT", func(v string) { cfg.Insight.Endpoint = v })
	setEnvValue("TOUGHPOS_INSIGHT_API_KEY", func(v string) { cfg.Insight.ApiKey = v })
	setEnvValue("TOUGHPOS_INSIGHT_MODEL", func(v string) { cfg.Insight.Model = v })
	setEnvValue("TOUGHPOS_INSIGHT_TIMEOUT", func(v string) { cfg.Insight.Timeout = cast.ToInt(v) })
}
