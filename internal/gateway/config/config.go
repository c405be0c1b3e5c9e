package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	DataDir   string
	Generator GeneratorConfig
	Mirror    MirrorConfig
	Ledger    LedgerConfig
}

// GeneratorConfig selects the LLM backend. Provider "fake" wires the
// scripted client, useful offline and in tests; anything else means Gemini.
type GeneratorConfig struct {
	Provider string
	Model    string
	APIKey   string
}

// MirrorConfig is the optional S3/MinIO mirror for failed-build forensics.
type MirrorConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LedgerConfig is the optional SQLite index of build attempts.
type LedgerConfig struct {
	Enabled bool
	Path    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	dataDir := flag.String("data-dir", "data", "root directory for project files")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}
	if envDir := strings.TrimSpace(os.Getenv("DATA_DIR")); envDir != "" {
		*dataDir = envDir
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:      *port,
		Env:       env,
		DataDir:   *dataDir,
		Generator: loadGeneratorConfig(),
		Mirror:    loadMirrorConfig(env),
		Ledger:    loadLedgerConfig(*dataDir),
	}, nil
}

func loadGeneratorConfig() GeneratorConfig {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("GENERATOR_PROVIDER")))
	if provider == "" {
		if apiKey == "" {
			provider = "fake"
		} else {
			provider = "gemini"
		}
	}
	return GeneratorConfig{
		Provider: provider,
		Model:    firstNonEmpty(strings.TrimSpace(os.Getenv("GENERATOR_MODEL")), "gemini-2.0-flash"),
		APIKey:   apiKey,
	}
}

func loadMirrorConfig(env string) MirrorConfig {
	endpoint := resolveMirrorEndpoint(env)
	return MirrorConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MIRROR_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MIRROR_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MIRROR_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MIRROR_S3_BUCKET")), "openqode-builds"),
		UseSSL:    resolveMirrorUseSSL(env),
	}
}

func resolveMirrorEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("MIRROR_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("MIRROR_S3_ENDPOINT"))
}

func resolveMirrorUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("MIRROR_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func loadLedgerConfig(dataDir string) LedgerConfig {
	raw := strings.TrimSpace(os.Getenv("BUILD_LEDGER_ENABLED"))
	enabled := true
	if raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			enabled = v
		}
	}
	return LedgerConfig{
		Enabled: enabled,
		Path:    firstNonEmpty(strings.TrimSpace(os.Getenv("BUILD_LEDGER_PATH")), dataDir+"/builds.db"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
