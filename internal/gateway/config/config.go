package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"accsetup/internal/llm"
)

type Config struct {
	Port        string
	Env         string
	Locale      string
	CatalogPath string
	CORSOrigins []string
	LLM         LLMConfig
	Advisor     AdvisorConfig
	Session     SessionConfig
	History     HistoryConfig
	Artifact    ArtifactConfig
}

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	RPS      float64
	Burst    int
	Retries  int
}

type AdvisorConfig struct {
	Language    string
	RaceMinutes int
}

type SessionConfig struct {
	TTL time.Duration
	Max int
}

type HistoryConfig struct {
	Path  string
	PGDSN string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// URLTTL is the lifetime of presigned export links.
	URLTTL time.Duration
}

// CanUseS3 reports whether enough is configured to build the S3 store.
func (a ArtifactConfig) CanUseS3() bool {
	return a.Enabled && a.Endpoint != "" && a.AccessKey != "" && a.SecretKey != "" && a.Bucket != ""
}

// Load reads .env (if present), then the environment, then args. The only
// flag is -port.
func Load(args ...string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}
	defaults := defaultsFor(env)

	return &Config{
		Port:        *port,
		Env:         env,
		Locale:      firstNonEmpty(strings.TrimSpace(os.Getenv("UI_LOCALE")), "hu"),
		CatalogPath: strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		CORSOrigins: envList("CORS_ORIGINS"),
		LLM:         loadLLMConfig(),
		Advisor: AdvisorConfig{
			Language:    firstNonEmpty(strings.TrimSpace(os.Getenv("SETUP_LANGUAGE")), "Hungarian"),
			RaceMinutes: envInt("RACE_MINUTES", 20),
		},
		Session: SessionConfig{
			TTL: envDuration("SESSION_TTL", 2*time.Hour),
			Max: envInt("SESSION_MAX", 1024),
		},
		History: HistoryConfig{
			Path:  firstNonEmpty(strings.TrimSpace(os.Getenv("HISTORY_PATH")), defaults.HistoryPath),
			PGDSN: strings.TrimSpace(os.Getenv("HISTORY_PG_DSN")),
		},
		Artifact: loadArtifactConfig(env, defaults),
	}, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "gemini"))
	var key string
	switch provider {
	case "openai":
		key = firstNonEmpty(strings.TrimSpace(os.Getenv("OPENAI_API_KEY")), strings.TrimSpace(os.Getenv("API_KEY")))
	case "fake":
		key = "offline"
	default:
		key = firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("API_KEY")))
	}
	model := strings.TrimSpace(os.Getenv("LLM_MODEL"))
	if model == "" && provider == "openai" {
		model = llm.DefaultOpenAIModel
	} else if model == "" {
		model = llm.DefaultGeminiModel
	}
	return LLMConfig{
		Provider: provider,
		APIKey:   key,
		Model:    model,
		BaseURL:  strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		RPS:      envFloat("LLM_RPS", 0),
		Burst:    envInt("LLM_BURST", 1),
		Retries:  envInt("LLM_RETRIES", 1),
	}
}

func loadArtifactConfig(env string, d defaults) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env, d)
	return ArtifactConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), d.Bucket),
		UseSSL:    resolveArtifactUseSSL(env),
		URLTTL:    envDuration("ARTIFACT_URL_TTL", time.Hour),
	}
}

func resolveArtifactEndpoint(env string, d defaults) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")), d.MinioEndpoint)
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// envList splits a comma separated variable, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
