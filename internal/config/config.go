package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	LogMode  string // dev|prod
	Verbose  bool

	DBDriver string
	DBDSN    string

	BlobDriver      string // fs|s3
	BlobBasePath    string // for fs
	BlobS3Bucket    string
	BlobS3Region    string
	BlobS3Endpoint  string // optional, e.g. MinIO
	BlobS3PathStyle bool

	RecentDriver string // memory|sql|redis
	RedisAddr    string

	RulesPath   string
	DatasetPath string // optional CSV loaded at startup

	EnableLocalAuth bool
	AuthHMACSecret  string
	AdminUser       string
	AdminPassHash   string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	logMode := "dev"
	if mode == ModeOnline {
		logMode = "prod"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		LogMode:  envOr("LOG_MODE", logMode),
		Verbose:  envBool("VERBOSE", false),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		BlobDriver:      envOr("BLOB_DRIVER", "fs"),
		BlobBasePath:    envOr("BLOB_BASE_PATH", "./data"),
		BlobS3Bucket:    os.Getenv("BLOB_S3_BUCKET"),
		BlobS3Region:    envOr("BLOB_S3_REGION", "us-east-1"),
		BlobS3Endpoint:  os.Getenv("BLOB_S3_ENDPOINT"),
		BlobS3PathStyle: envBool("BLOB_S3_PATH_STYLE", false),

		RecentDriver: envOr("RECENT_DRIVER", "sql"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),

		RulesPath:   envOr("RULES_PATH", "./configs/rules.yaml"),
		DatasetPath: os.Getenv("DATASET_PATH"),

		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://insights.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

// CORSOrigins returns the allow-list for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
