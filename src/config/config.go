package config

import (
	"log"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
)

const (
	DATE_FORMAT  = "2006-01-02"
	MONTH_FORMAT = "2006-01"

	GATEWAY_RAZORPAY = "razorpay"
	GATEWAY_STRIPE   = "stripe"

	TRANSPORT_SMTP = "smtp"
	TRANSPORT_SES  = "ses"
)

// Origins the storefront and the admin console are served from.
var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:5175",
	"https://ddtours.in",
	"https://www.ddtours.in",
	"https://admin.ddtours.in",
}

type Config struct {
	APIEnv          string
	Port            string
	MaintenanceMode bool
	LogDir          string
	TempDir         string
	SecretsDir      string
	AWSSecretsID    string
	SecretsBucket   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration

	FirebaseProjectID    string
	FirebaseClientEmail  string
	FirebasePrivateKey   string
	FirebasePrivateKeyID string

	AdminEmails   []string
	AdminPassword string
	JWTSecret     string
	AdminTokenTTL time.Duration

	PaymentGateway    string
	PaymentCurrency   string
	RazorpayKeyID     string
	RazorpayKeySecret string
	StripeSecretKey   string

	MailTransport string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	MailFrom      string
	MailFromName  string
	EmailQueue    string
	MailWorkers   int
	ProfileURL    string

	AssetsBucket  string
	AssetsBaseURL string
	MaxImages     int
	MaxImageBytes int64

	CORSOrigins     []string
	TrustedProxies  []string
	RedisHost       string
	RateLimitMax    int64
	RateLimitWindow time.Duration

	QRCSecret         string
	ReconcileInterval time.Duration
}

// Load reads the process environment. A .env file in the working directory
// is loaded first when API_ENV is local.
func Load() *Config {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("[config] Could not load .env file: %s\n", err.Error())
		}
	}
	return FromEnv()
}

func FromEnv() *Config {
	cfg := &Config{
		APIEnv:          getEnv("API_ENV", "local"),
		Port:            getEnv("PORT", "5000"),
		MaintenanceMode: getEnvAsBool("MAINTENANCE_MODE", false),
		LogDir:          getEnv("LOG_DIR", "logs"),
		TempDir:         getEnv("TEMP_DIR", os.TempDir()),
		SecretsDir:      getEnv("SECRETS_DIR", "/secrets"),
		AWSSecretsID:    getEnv("AWS_SECRETS_ID", ""),
		SecretsBucket:   getEnv("S3_SECRETS_BUCKET", ""),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),

		FirebaseProjectID:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseClientEmail:  getEnv("FIREBASE_CLIENT_EMAIL", ""),
		FirebasePrivateKey:   normalizeKey(getEnv("FIREBASE_PRIVATE_KEY", "")),
		FirebasePrivateKeyID: getEnv("FIREBASE_PRIVATE_KEY_ID", ""),

		AdminEmails:   splitList(getEnv("ADMIN_EMAILS", "")),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AdminTokenTTL: getEnvAsDuration("ADMIN_TOKEN_TTL", 24*time.Hour),

		PaymentGateway:    strings.ToLower(getEnv("PAYMENT_GATEWAY", GATEWAY_RAZORPAY)),
		PaymentCurrency:   getEnv("PAYMENT_CURRENCY", "INR"),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),

		MailTransport: strings.ToLower(getEnv("MAIL_TRANSPORT", TRANSPORT_SMTP)),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("EMAIL_USER", ""),
		SMTPPassword:  getEnv("EMAIL_PASS", ""),
		MailFrom:      getEnv("MAIL_FROM", getEnv("EMAIL_USER", "")),
		MailFromName:  getEnv("MAIL_FROM_NAME", "DD Tours & Travels"),
		EmailQueue:    getEnv("EMAIL_QUEUE", ""),
		MailWorkers:   getEnvAsInt("MAIL_WORKERS", 2),
		ProfileURL:    getEnv("PROFILE_URL", "https://ddtours.in/profile"),

		AssetsBucket:  getEnv("S3_ASSETS_BUCKET", ""),
		AssetsBaseURL: strings.TrimSuffix(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		MaxImages:     getEnvAsInt("MAX_TRIP_IMAGES", 5),
		MaxImageBytes: int64(getEnvAsInt("MAX_IMAGE_BYTES", 5*1024*1024)),

		CORSOrigins:     append(append([]string{}, defaultOrigins...), splitList(getEnv("CORS_ALLOWED_ORIGINS", ""))...),
		TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "")),
		RedisHost:       getEnv("REDIS_HOST", ""),
		RateLimitMax:    int64(getEnvAsInt("RATE_LIMIT_MAX", 100)),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		QRCSecret:         getEnv("API_QRC_SECRET", ""),
		ReconcileInterval: getEnvAsDuration("RECONCILE_INTERVAL", 6*time.Hour),
	}
	return cfg
}

// OverlaySecrets replaces credential fields with values from a JSON secret
// document keyed by the same names as the environment variables.
func (c *Config) OverlaySecrets(raw string) {
	if !gjson.Valid(raw) {
		log.Println("[config] Secret payload is not valid JSON. Skipping overlay")
		return
	}
	doc := gjson.Parse(raw)
	set := func(key string, dst *string) {
		if v := doc.Get(key); v.Exists() && v.String() != "" {
			*dst = v.String()
		}
	}
	set("FIREBASE_PROJECT_ID", &c.FirebaseProjectID)
	set("FIREBASE_CLIENT_EMAIL", &c.FirebaseClientEmail)
	set("FIREBASE_PRIVATE_KEY_ID", &c.FirebasePrivateKeyID)
	set("FIREBASE_PRIVATE_KEY", &c.FirebasePrivateKey)
	c.FirebasePrivateKey = normalizeKey(c.FirebasePrivateKey)
	set("ADMIN_PASSWORD", &c.AdminPassword)
	set("JWT_SECRET", &c.JWTSecret)
	set("RAZORPAY_KEY_ID", &c.RazorpayKeyID)
	set("RAZORPAY_KEY_SECRET", &c.RazorpayKeySecret)
	set("STRIPE_SECRET_KEY", &c.StripeSecretKey)
	set("EMAIL_USER", &c.SMTPUser)
	set("EMAIL_PASS", &c.SMTPPassword)
	set("API_QRC_SECRET", &c.QRCSecret)
	if v := doc.Get("ADMIN_EMAILS"); v.Exists() {
		c.AdminEmails = splitList(v.String())
	}
}

func (c *Config) IsLocal() bool {
	return c.APIEnv == "local"
}

func (c *Config) IsProd() bool {
	return c.APIEnv == "production"
}

func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if strings.ToLower(e) == email {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// Private keys stored in env files carry literal \n sequences.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
