package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SYNAPSE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SYNAPSE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL returns the Postgres URL for the durable findings store.
// Empty means the in-memory store is used.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MemoryServiceURL() string {
	u := os.Getenv("MEMORY_SERVICE_URL")
	if u == "" {
		return "http://localhost:9100"
	}
	return u
}

func RetrievalServiceURL() string {
	u := os.Getenv("RETRIEVAL_SERVICE_URL")
	if u == "" {
		return "http://localhost:9200"
	}
	return u
}

// LLMProvider returns the configured generative provider.
// Valid values: openai, mock. Defaults to "openai" if not set.
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// LLMAPIKey returns the API key for the configured provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// MemoryBlendWeight is the weight given to the memory-side confidence when
// blending memory and retrieval answers. Tunable policy constant.
func MemoryBlendWeight() float64 {
	w, err := strconv.ParseFloat(os.Getenv("MEMORY_BLEND_WEIGHT"), 64)
	if err != nil || w <= 0 || w >= 1 {
		return 0.6
	}
	return w
}

// BackendTimeout bounds every memory/retrieval/generative call.
func BackendTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("BACKEND_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// QueryCacheTTL returns the TTL for the query-result cache.
// Zero disables caching.
func QueryCacheTTL() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("QUERY_CACHE_TTL_SECONDS"))
	if err != nil {
		return 60 * time.Second
	}
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// RetrievalTopK returns how many chunks to request per retrieval call.
func RetrievalTopK() int {
	k, err := strconv.Atoi(os.Getenv("RETRIEVAL_TOP_K"))
	if err != nil || k <= 0 {
		return 5
	}
	return k
}

// FeedbackFlushInterval is how often the background flusher retries
// persisting promoted findings. Zero disables the flusher.
func FeedbackFlushInterval() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("FEEDBACK_FLUSH_INTERVAL_SECONDS"))
	if err != nil {
		return 5 * time.Minute
	}
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
