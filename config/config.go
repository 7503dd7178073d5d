package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cthoyt/robot-obo-tool/internal/shared/x/strx"

	"github.com/sethvargo/go-envconfig"
	"sigs.k8s.io/yaml"
)

// Daemon modes.
const (
	ModeServe  = "serve"
	ModeMirror = "mirror"

	// one-shot CLI commands, validated with relaxed rules
	ModeConvertCMD  = "convert-cmd"
	ModeValidateCMD = "validate-cmd"
)

// Storage backends.
const (
	StorageNameLocalFS = "localfs"
	StorageNameS3      = "s3"
	StorageNameSFTP    = "sftp"
)

// Storage transforms.
const (
	RepoCompressorGzip     = "gzip"
	RepoCompressorZstd     = "zstd"
	RepoEncryptorAes256Gcm = "aes-256-gcm"
)

const envPrefix = "ROBOTOBO_"

type Config struct {
	Main    MainConfig    `json:"main"`
	Robot   RobotConfig   `json:"robot"`
	Log     LogConfig     `json:"log"`
	Metrics MetricsConfig `json:"metrics"`
	Dev     DevConfig     `json:"dev"`
	Mirror  MirrorConfig  `json:"mirror"`
	Storage StorageConfig `json:"storage"`
}

type MainConfig struct {
	ListenPort int    `json:"listen_port" env:"ROBOTOBO_LISTEN_PORT, default=7074"`
	Directory  string `json:"directory" env:"ROBOTOBO_DIRECTORY"`
	AuthToken  string `json:"auth_token" env:"ROBOTOBO_AUTH_TOKEN"`
}

type RobotConfig struct {
	Version         string `json:"version" env:"ROBOTOBO_ROBOT_VERSION"`
	CacheDir        string `json:"cache_dir" env:"ROBOTOBO_CACHE_DIR"`
	JavaPath        string `json:"java_path" env:"ROBOTOBO_JAVA_PATH"`
	DownloadTimeout string `json:"download_timeout" env:"ROBOTOBO_DOWNLOAD_TIMEOUT"`

	DownloadTimeoutParsed time.Duration `json:"-"`
}

type LogConfig struct {
	Level     string `json:"level" env:"ROBOTOBO_LOG_LEVEL, default=info"`
	Format    string `json:"format" env:"ROBOTOBO_LOG_FORMAT, default=text"`
	AddSource bool   `json:"add_source" env:"ROBOTOBO_LOG_ADD_SOURCE"`
}

type MetricsConfig struct {
	Enable bool `json:"enable" env:"ROBOTOBO_METRICS_ENABLE"`
}

type DevConfig struct {
	Pprof PprofConfig `json:"pprof"`
}

type PprofConfig struct {
	Enable bool `json:"enable" env:"ROBOTOBO_PPROF_ENABLE"`
}

type MirrorConfig struct {
	Cron         string          `json:"cron" env:"ROBOTOBO_MIRROR_CRON"`
	OutputFormat string          `json:"output_format" env:"ROBOTOBO_MIRROR_OUTPUT_FORMAT, default=obo"`
	Retention    RetentionConfig `json:"retention"`
	Sources      []MirrorSource  `json:"sources"`
}

type RetentionConfig struct {
	Enable   bool `json:"enable" env:"ROBOTOBO_MIRROR_RETENTION_ENABLE"`
	KeepLast int  `json:"keep_last" env:"ROBOTOBO_MIRROR_RETENTION_KEEP_LAST, default=3"`
}

// MirrorSource is one ontology kept up to date by the mirror daemon.
type MirrorSource struct {
	Name    string `json:"name"`
	IRI     string `json:"iri"`
	Format  string `json:"format"`
	Merge   bool   `json:"merge"`
	Reason  bool   `json:"reason"`
	NoCheck bool   `json:"no_check"`
}

type StorageConfig struct {
	Name        string            `json:"name" env:"ROBOTOBO_STORAGE_NAME, default=localfs"`
	Compression CompressionConfig `json:"compression"`
	Encryption  EncryptionConfig  `json:"encryption"`
	S3          S3Config          `json:"s3"`
	SFTP        SFTPConfig        `json:"sftp"`
}

type CompressionConfig struct {
	Algo string `json:"algo" env:"ROBOTOBO_STORAGE_COMPRESSION_ALGO"`
}

type EncryptionConfig struct {
	Algo string `json:"algo" env:"ROBOTOBO_STORAGE_ENCRYPTION_ALGO"`
	Pass string `json:"pass" env:"ROBOTOBO_STORAGE_ENCRYPTION_PASS"`
}

type S3Config struct {
	URL             string `json:"url" env:"ROBOTOBO_S3_URL"`
	AccessKeyID     string `json:"access_key_id" env:"ROBOTOBO_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"ROBOTOBO_S3_SECRET_ACCESS_KEY"`
	Bucket          string `json:"bucket" env:"ROBOTOBO_S3_BUCKET"`
	Region          string `json:"region" env:"ROBOTOBO_S3_REGION"`
	UsePathStyle    bool   `json:"use_path_style" env:"ROBOTOBO_S3_USE_PATH_STYLE"`
	DisableSSL      bool   `json:"disable_ssl" env:"ROBOTOBO_S3_DISABLE_SSL"`
}

type SFTPConfig struct {
	Host     string `json:"host" env:"ROBOTOBO_SFTP_HOST"`
	Port     int    `json:"port" env:"ROBOTOBO_SFTP_PORT, default=22"`
	User     string `json:"user" env:"ROBOTOBO_SFTP_USER"`
	Pass     string `json:"pass" env:"ROBOTOBO_SFTP_PASS"`
	PKeyPath string `json:"pkey_path" env:"ROBOTOBO_SFTP_PKEY_PATH"`
	PKeyPass string `json:"pkey_pass" env:"ROBOTOBO_SFTP_PKEY_PASS"`
	BaseDir  string `json:"base_dir" env:"ROBOTOBO_SFTP_BASE_DIR"`
}

var config *Config

// Cfg returns the config loaded in main.
func Cfg() *Config {
	if config == nil {
		log.Fatal("config was not loaded in main")
	}
	return config
}

// MustLoad reads the config from a YAML file, expanding ${ROBOTOBO_*}
// placeholders from the environment.
func MustLoad(path, mode string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read config file: %v", err)
	}

	var c Config
	expanded := expandEnvsWithPrefix(string(data), envPrefix)
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		log.Fatalf("parse config file: %v", err)
	}
	if err := validate(&c, mode); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	config = &c
	return config
}

// MustEnvconfig builds the config purely from ROBOTOBO_* env vars.
func MustEnvconfig(mode string) *Config {
	var c Config
	if err := envconfig.Process(context.Background(), &c); err != nil {
		log.Fatalf("process env config: %v", err)
	}
	if err := validate(&c, mode); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	config = &c
	return config
}

var (
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvsWithPrefix expands ${VAR} placeholders whose name starts with
// prefix; placeholders with other prefixes are left untouched.
func expandEnvsWithPrefix(input, prefix string) string {
	return envPlaceholder.ReplaceAllStringFunc(input, func(match string) string {
		name := envPlaceholder.FindStringSubmatch(match)[1]
		if !strings.HasPrefix(name, prefix) {
			return match
		}
		return os.Getenv(name)
	})
}

func validate(c *Config, mode string) error {
	var errs []string

	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch mode {
	case ModeServe, ModeMirror, ModeConvertCMD, ModeValidateCMD:
	default:
		add("invalid mode: %s", mode)
	}

	if c.Log.Level != "" && !strx.IsInList(strings.ToLower(c.Log.Level), logLevels) {
		add("unknown log.level: %s", c.Log.Level)
	}
	if c.Log.Format != "" && !strx.IsInList(strings.ToLower(c.Log.Format), logFormats) {
		add("unknown log.format: %s", c.Log.Format)
	}

	if c.Robot.DownloadTimeout != "" {
		d, err := time.ParseDuration(c.Robot.DownloadTimeout)
		if err != nil {
			add("robot.download_timeout cannot parse: %s", c.Robot.DownloadTimeout)
		} else {
			c.Robot.DownloadTimeoutParsed = d
		}
	}

	if mode == ModeServe {
		if c.Main.ListenPort <= 0 {
			add("main.listen_port is required")
		}
		if c.Main.Directory == "" {
			add("main.directory is required")
		}
	}

	if mode == ModeMirror {
		if c.Main.Directory == "" {
			add("main.directory is required")
		}
		if c.Mirror.Cron == "" {
			add("mirror.cron is required")
		}
		if len(c.Mirror.Sources) == 0 {
			add("mirror.sources must not be empty")
		}
		for i, src := range c.Mirror.Sources {
			if src.Name == "" {
				add("mirror.sources[%d].name is required", i)
			}
			if src.IRI == "" {
				add("mirror.sources[%d].iri is required", i)
			}
		}
		if c.Mirror.Retention.Enable && c.Mirror.Retention.KeepLast <= 0 {
			add("mirror.retention.keep_last must be > 0")
		}
		if err := validateStorage(&c.Storage, add); err != nil {
			add("%v", err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateStorage(s *StorageConfig, add func(format string, args ...any)) error {
	switch strings.ToLower(s.Name) {
	case "", StorageNameLocalFS:
	case StorageNameS3:
		if s.S3.URL == "" {
			add("storage.s3.url is required")
		}
		if s.S3.AccessKeyID == "" {
			add("storage.s3.access_key_id is required")
		}
		if s.S3.SecretAccessKey == "" {
			add("storage.s3.secret_access_key is required")
		}
		if s.S3.Bucket == "" {
			add("storage.s3.bucket is required")
		}
		if s.S3.Region == "" {
			add("storage.s3.region is required")
		}
	case StorageNameSFTP:
		if s.SFTP.Host == "" {
			add("storage.sftp.host is required")
		}
		if s.SFTP.User == "" {
			add("storage.sftp.user is required")
		}
		if s.SFTP.Pass == "" && s.SFTP.PKeyPath == "" {
			add("either storage.sftp.pass or storage.sftp.pkey_path must be provided")
		}
	default:
		return fmt.Errorf("unknown storage name: %s", s.Name)
	}

	switch s.Compression.Algo {
	case "", RepoCompressorGzip, RepoCompressorZstd:
	default:
		add("unknown storage.compression.algo: %s", s.Compression.Algo)
	}

	if s.Encryption.Algo != "" {
		if s.Encryption.Algo != RepoEncryptorAes256Gcm {
			add("unknown storage.encryption.algo: %s", s.Encryption.Algo)
		}
		if s.Encryption.Pass == "" {
			add("storage.encryption.pass is required when encryption is enabled")
		}
	}
	return nil
}

func (c *Config) IsLocalStor() bool {
	return c.Storage.Name == "" || strings.EqualFold(c.Storage.Name, StorageNameLocalFS)
}

// String renders the config as JSON with sensitive fields masked.
func (c *Config) String() string {
	masked := *c
	masked.Main.AuthToken = mask(masked.Main.AuthToken)
	masked.Storage.Encryption.Pass = mask(masked.Storage.Encryption.Pass)
	masked.Storage.S3.SecretAccessKey = mask(masked.Storage.S3.SecretAccessKey)
	masked.Storage.SFTP.Pass = mask(masked.Storage.SFTP.Pass)
	masked.Storage.SFTP.PKeyPass = mask(masked.Storage.SFTP.PKeyPass)

	data, err := json.MarshalIndent(&masked, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unprintable config: %v>", err)
	}
	return string(data)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "*****"
}
