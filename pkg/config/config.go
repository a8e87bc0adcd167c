package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	NATS       NATSConfig // status events (optional)
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Storage    StorageConfig
	Generation GenerationConfig
	LLM        LLMConfig
	Pipeline   PipelineConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Env         string
	ModelsFile  string // TOML override ของ model catalog (optional)
	CORSOrigins string // คั่นด้วย comma
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig ใช้เก็บ generation epoch ต่อ script
type RedisConfig struct {
	Enabled  bool
	URL      string // redis://localhost:6379
	Password string
	DB       int
}

// NATSConfig สำหรับ publish สถานะ generation
type NATSConfig struct {
	Enabled bool
	URL     string // nats://localhost:4222
}

// JWTConfig ว่าง = ไม่เปิด auth
type JWTConfig struct {
	Secret string
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string // logs/app.log
	MaxSize    int    // MB
	MaxBackups int
	MaxAge     int // วัน
	Compress   bool
}

type StorageConfig struct {
	Type          string // local, s3, r2, gcs
	BasePath      string // local: ./uploads
	BaseURL       string // local: http://localhost:8080/files
	MaxUploadSize int64
	FetchTimeout  time.Duration // timeout ตอนดึงไฟล์จาก URL ภายนอก
	MinFreeDisk   float64       // local: % พื้นที่ว่างขั้นต่ำก่อนรับไฟล์

	S3  S3Config
	GCS GCSConfig
}

// S3Config ใช้ร่วมกันระหว่าง MinIO (s3) และ Cloudflare R2 (r2)
type S3Config struct {
	Endpoint  string // minio:9000 หรือ https://<account>.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string // auto สำหรับ R2
	PublicURL string
}

type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	PublicURL       string
}

// GenerationConfig สำหรับ image/video generation vendors
type GenerationConfig struct {
	BaseURL   string // aggregator API (nano-banana, sora, veo)
	APIKey    string
	VolcAK    string // Volcengine access key (jimeng)
	VolcSK    string
	VolcHost  string
	RateLimit float64 // requests ต่อวินาที ต่อ vendor
	Timeout   time.Duration

	ImagePollInterval time.Duration
	VideoPollInterval time.Duration
	PollAttempts      int
}

type LLMConfig struct {
	DeepSeekKey     string
	DeepSeekBaseURL string
	QwenKey         string
	QwenBaseURL     string
	GeminiKey       string
	MaxAttempts     int
	MinWait         time.Duration
	MaxWait         time.Duration
	Multiplier      float64
}

// PipelineConfig ควบคุม background jobs
type PipelineConfig struct {
	WorkerPoolSize   int           // 0 = ไม่จำกัด
	StaleAfter       time.Duration // generating นานกว่านี้ถือว่าค้าง
	ExportExpiresIn  int           // วินาที
	ReaperSweepCron  string        // ว่าง = ใช้แค่ lazy reaper ตอน list
	DefaultSegLength int
}

func LoadConfig() (*Config, error) {
	// ไม่ error ถ้าไม่มี .env file (ใช้ environment variables แทน)
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storyforge"),
			Port:        getEnv("APP_PORT", "8080"),
			Env:         getEnv("APP_ENV", "development"),
			ModelsFile:  getEnv("MODELS_FILE", ""),
			CORSOrigins: getEnv("CORS_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "storyforge"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled: getEnvBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE", "logs/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Storage: StorageConfig{
			Type:          getEnv("STORAGE_TYPE", "local"),
			BasePath:      getEnv("STORAGE_BASE_PATH", "./uploads"),
			BaseURL:       getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
			MaxUploadSize: getEnvInt64("STORAGE_MAX_UPLOAD_SIZE", 50<<20), // 50MB
			FetchTimeout:  getEnvDuration("STORAGE_FETCH_TIMEOUT", 60*time.Second),
			MinFreeDisk:   getEnvFloat("STORAGE_MIN_FREE_PERCENT", 5),
			S3: S3Config{
				Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
				Bucket:    getEnv("S3_BUCKET", "storyforge"),
				UseSSL:    getEnvBool("S3_USE_SSL", false),
				Region:    getEnv("S3_REGION", "auto"),
				PublicURL: getEnv("S3_PUBLIC_URL", ""),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
				PublicURL:       getEnv("GCS_PUBLIC_URL", ""),
			},
		},
		Generation: GenerationConfig{
			BaseURL:           getEnv("GENERATION_BASE_URL", "https://grsai.dakka.com.cn"),
			APIKey:            getEnv("GENERATION_API_KEY", ""),
			VolcAK:            getEnv("VOLC_ACCESS_KEY", ""),
			VolcSK:            getEnv("VOLC_SECRET_KEY", ""),
			VolcHost:          getEnv("VOLC_HOST", "visual.volcengineapi.com"),
			RateLimit:         getEnvFloat("GENERATION_RATE_LIMIT", 5),
			Timeout:           getEnvDuration("GENERATION_HTTP_TIMEOUT", 60*time.Second),
			ImagePollInterval: getEnvDuration("IMAGE_POLL_INTERVAL", 2*time.Second),
			VideoPollInterval: getEnvDuration("VIDEO_POLL_INTERVAL", 5*time.Second),
			PollAttempts:      getEnvInt("GENERATION_POLL_ATTEMPTS", 60),
		},
		LLM: LLMConfig{
			DeepSeekKey:     getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			QwenKey:         getEnv("QWEN_API_KEY", ""),
			QwenBaseURL:     getEnv("QWEN_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
			GeminiKey:       getEnv("GEMINI_API_KEY", ""),
			MaxAttempts:     getEnvInt("LLM_RETRY_ATTEMPTS", 3),
			MinWait:         getEnvDuration("LLM_RETRY_MIN_WAIT", 2*time.Second),
			MaxWait:         getEnvDuration("LLM_RETRY_MAX_WAIT", 10*time.Second),
			Multiplier:      getEnvFloat("LLM_RETRY_MULTIPLIER", 1),
		},
		Pipeline: PipelineConfig{
			WorkerPoolSize:   getEnvInt("PIPELINE_WORKERS", 0),
			StaleAfter:       getEnvDuration("PIPELINE_STALE_AFTER", 5*time.Minute),
			ExportExpiresIn:  getEnvInt("EXPORT_EXPIRES_IN", 3600),
			ReaperSweepCron:  getEnv("REAPER_SWEEP_CRON", ""),
			DefaultSegLength: getEnvInt("DEFAULT_SEGMENT_DURATION", 6),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// getEnvDuration รับทั้ง "30s" และตัวเลขล้วน (วินาที)
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// IsDevelopment ตรวจสอบว่าเป็น development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction ตรวจสอบว่าเป็น production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
