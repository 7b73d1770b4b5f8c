package config

import "os"

type Config struct {
	Port         string
	Env          string
	MongoURI     string
	JWTSecret    string
	MediaDir     string
	MediaBaseURL string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		MongoURI:     getEnv("MONGO_URI", ""),
		JWTSecret:    getEnv("JWT_SECRET", "supersecretjwtkey"),
		MediaDir:     getEnv("MEDIA_DIR", "./uploads"),
		MediaBaseURL: getEnv("MEDIA_BASE_URL", "/media"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
