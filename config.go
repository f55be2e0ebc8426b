package listscribe

import (
	"errors"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

type ModelConfig struct {
	Backend        string  `env:"MODEL_BACKEND,default=bedrock"`
	ModelID        string  `env:"MODEL_ID"`
	MaxTokens      int32   `env:"MAX_TOKENS,default=4000"`
	Temperature    float32 `env:"TEMPERATURE,default=0.2"`
	TopP           float32 `env:"TOP_P,default=0.9"`
	OllamaEndpoint string  `env:"OLLAMA_ENDPOINT,default=http://localhost:11434"`
}

type ServerConfig struct {
	Addr                string `env:"LISTEN_ADDR,default=:3000"`
	StaticDir           string `env:"STATIC_DIR,default=public"`
	MaxBodyBytes        int64  `env:"MAX_BODY_BYTES,default=52428800"`
	AllowedOrigins      string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	SlackWebhookURL     string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel        string `env:"SLACK_CHANNEL,default=#groceries"`
	TranscriptionLogDir string `env:"TRANSCRIPTION_LOG_DIR"`
	OtelEnabled         bool   `env:"OTEL_ENABLED,default=false"`
}

// Origins splits CORS_ALLOWED_ORIGINS on commas or semicolons and drops
// empty entries.
func (c ServerConfig) Origins() []string {
	fields := strings.FieldsFunc(c.AllowedOrigins, func(r rune) bool { return r == ',' || r == ';' })
	origins := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			origins = append(origins, f)
		}
	}
	return origins
}

type AuthConfig struct {
	Strategy      string        `env:"AUTH_STRATEGY,default=jwt"`
	BasicUsername string        `env:"BASIC_AUTH_USERNAME,required"`
	BasicPassword string        `env:"BASIC_AUTH_PASSWORD,required"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=2880h"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL,default=2880h"`
}

type SessionStoreConfig struct {
	Backend       string `env:"SESSION_STORE,default=redis"`
	SQLitePath    string `env:"SESSION_SQLITE_PATH,default=sessions.db"`
	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
	KeyPrefix     string `env:"SESSION_KEY_PREFIX,default=sess:"`
}

// ClientConfig configures the command-line checklist client.
type ClientConfig struct {
	ServerURL    string `env:"LISTSCRIBE_SERVER,default=http://localhost:3000"`
	Token        string `env:"LISTSCRIBE_TOKEN"`
	StateBackend string `env:"LISTSCRIBE_STATE_BACKEND,default=sqlite"`
	StatePath    string `env:"LISTSCRIBE_STATE_PATH,default=listscribe.db"`
	S3Bucket     string `env:"LISTSCRIBE_S3_BUCKET"`
	S3Prefix     string `env:"LISTSCRIBE_S3_PREFIX,default=listscribe/"`
	CacheVersion int    `env:"LISTSCRIBE_CACHE_VERSION,default=2"`
}

// DecodeEnv fills target from the environment. A struct made entirely of
// optional fields with nothing set is not an error.
func DecodeEnv(target any) error {
	err := envdecode.Decode(target)
	if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil
	}
	return err
}
