package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RedisURL      string
	RedisAddr     string
	RedisPassword string

	JWTSecret string
	JWTExpiry time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	StoreName         string
	ThemeColor        string

	MapsProvider     string
	GoogleMapsAPIKey string
	OlaMapsAPIKey    string
	MapsRateLimit    float64
	MapsRateBurst    int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	UploadDir           string

	OriginURL     string
	MaxUploadSize int64
}

var AppConfig *Config

func LoadConfig() *Config {
	if os.Getenv("VERCEL") == "" {
		if err := godotenv.Load(); err != nil {
			Logger().Info(".env file not found, using system environment variables")
		}
	}

	jwtExpiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		jwtExpiry = 24 * time.Hour
	}

	maxUploadSize, _ := strconv.ParseInt(os.Getenv("MAX_UPLOAD_SIZE"), 10, 64)
	if maxUploadSize == 0 {
		maxUploadSize = 5242880
	}

	rateLimit, err := strconv.ParseFloat(getEnv("MAPS_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		rateLimit = 5
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}
	rateBurst, err := strconv.Atoi(getEnv("MAPS_RATE_BURST", "10"))
	if err != nil || rateBurst <= 0 {
		rateBurst = 10
	}

	AppConfig = &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", getEnv("PORT", "8082")),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "medcart"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),
		JWTExpiry: jwtExpiry,

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		StoreName:         getEnv("STORE_NAME", "MedCart"),
		ThemeColor:        getEnv("THEME_COLOR", "#0f766e"),

		MapsProvider:     getEnv("MAPS_PROVIDER", "google"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		OlaMapsAPIKey:    os.Getenv("OLA_MAPS_API_KEY"),
		MapsRateLimit:    rateLimit,
		MapsRateBurst:    rateBurst,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),

		OriginURL:     os.Getenv("ORIGIN_URL"),
		MaxUploadSize: maxUploadSize,
	}

	Logger().Info("configuration loaded",
		zap.String("env", AppConfig.AppEnv),
		zap.String("port", AppConfig.Port),
		zap.String("maps_provider", AppConfig.MapsProvider),
	)
	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
