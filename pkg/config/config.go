package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	MongoURI                string
	MongoDB                 string
	JwtSecret               string
	FirebaseCredentialsPath string
	GeminiAPIKey            string
	GeminiModel             string
	YoutubeAPIKey           string
	SMTPHost                string
	SMTPPort                string
	SMTPUser                string
	SMTPPass                string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "4000"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDB:                 getEnv("MONGO_DB", "hexsmith"),
		JwtSecret:               getEnv("JWT_SECRET", "hexsmith_super_secret_key_change_this"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		YoutubeAPIKey:           getEnv("YOUTUBE_API_KEY", ""),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                getEnv("SMTP_PORT", "587"),
		SMTPUser:                getEnv("SMTP_USER", ""),
		SMTPPass:                getEnv("SMTP_PASS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
