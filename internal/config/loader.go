package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BUCKETTOOL_SCAN_THREADS.
const EnvPrefix = "BUCKETTOOL"

// Loader reads the configuration file and environment
type Loader struct {
	configFile string
	envFile    string
	viper      *viper.Viper
}

// NewLoader creates a loader. An empty configFile searches ./configs and the
// working directory for config.yaml and falls back to defaults when none exists.
func NewLoader(configFile string) *Loader {
	return &Loader{
		configFile: configFile,
		envFile:    ".env",
		viper:      viper.New(),
	}
}

// WithEnvFile overrides the dotenv file location.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load merges defaults, config file, .env and environment into a validated Config.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	l.viper.SetConfigType("yaml")
	l.viper.SetEnvPrefix(EnvPrefix)
	l.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.viper.AutomaticEnv()
	l.bindEnvVars()
	l.setDefaults()

	if err := l.readConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.viper.ConfigFileUsed()
}

// Load is a shortcut for NewLoader(configFile).Load().
func Load(configFile string) (*Config, error) {
	return NewLoader(configFile).Load()
}

func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	if _, err := os.Stat(l.envFile); err != nil {
		return nil
	}
	// existing environment wins over the file
	if err := godotenv.Load(l.envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", l.envFile, err)
	}
	return nil
}

func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.viper.SetConfigFile(l.configFile)
		return l.viper.ReadInConfig()
	}

	l.viper.SetConfigName("config")
	l.viper.AddConfigPath("./configs")
	l.viper.AddConfigPath(".")
	if err := l.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func (l *Loader) bindEnvVars() {
	l.viper.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL")
	l.viper.BindEnv("log.format", EnvPrefix+"_LOG_FORMAT")
	l.viper.BindEnv("log.output", EnvPrefix+"_LOG_OUTPUT")
	l.viper.BindEnv("log.file_path", EnvPrefix+"_LOG_FILE_PATH")

	l.viper.BindEnv("http.timeout", EnvPrefix+"_HTTP_TIMEOUT")
	l.viper.BindEnv("http.user_agent", EnvPrefix+"_HTTP_USER_AGENT")
	l.viper.BindEnv("http.insecure_skip_verify", EnvPrefix+"_HTTP_INSECURE_SKIP_VERIFY")

	// lists are comma separated, e.g. BUCKETTOOL_DETECT_VENDORS=aliyun,aws
	l.viper.BindEnv("detect.check_acl", EnvPrefix+"_DETECT_CHECK_ACL")
	l.viper.BindEnv("detect.check_policy", EnvPrefix+"_DETECT_CHECK_POLICY")
	l.viper.BindEnv("detect.vendors", EnvPrefix+"_DETECT_VENDORS")

	l.viper.BindEnv("scan.threads", EnvPrefix+"_SCAN_THREADS")
	l.viper.BindEnv("scan.output", EnvPrefix+"_SCAN_OUTPUT")
	l.viper.BindEnv("scan.blacklist", EnvPrefix+"_SCAN_BLACKLIST")

	l.viper.BindEnv("history.path", EnvPrefix+"_HISTORY_PATH")
	l.viper.BindEnv("history.enabled", EnvPrefix+"_HISTORY_ENABLED")

	l.viper.BindEnv("server.host", EnvPrefix+"_SERVER_HOST")
	l.viper.BindEnv("server.port", EnvPrefix+"_SERVER_PORT")
	l.viper.BindEnv("server.mode", EnvPrefix+"_SERVER_MODE")
}

func (l *Loader) setDefaults() {
	d := Default()

	l.viper.SetDefault("log.level", d.Log.Level)
	l.viper.SetDefault("log.format", d.Log.Format)
	l.viper.SetDefault("log.output", d.Log.Output)
	l.viper.SetDefault("log.file_path", d.Log.FilePath)
	l.viper.SetDefault("log.max_size", d.Log.MaxSize)
	l.viper.SetDefault("log.max_backups", d.Log.MaxBackups)
	l.viper.SetDefault("log.max_age", d.Log.MaxAge)
	l.viper.SetDefault("log.compress", d.Log.Compress)
	l.viper.SetDefault("log.caller", d.Log.Caller)

	l.viper.SetDefault("http.timeout", d.HTTP.Timeout)
	l.viper.SetDefault("http.max_conns_per_host", d.HTTP.MaxConnsPerHost)
	l.viper.SetDefault("http.user_agent", d.HTTP.UserAgent)
	l.viper.SetDefault("http.insecure_skip_verify", d.HTTP.InsecureSkipVerify)

	l.viper.SetDefault("detect.check_acl", d.Detect.CheckACL)
	l.viper.SetDefault("detect.check_policy", d.Detect.CheckPolicy)

	l.viper.SetDefault("scan.threads", d.Scan.Threads)
	l.viper.SetDefault("scan.output", d.Scan.Output)

	l.viper.SetDefault("history.path", d.History.Path)
	l.viper.SetDefault("history.enabled", d.History.Enabled)

	l.viper.SetDefault("server.host", d.Server.Host)
	l.viper.SetDefault("server.port", d.Server.Port)
	l.viper.SetDefault("server.mode", d.Server.Mode)
}
