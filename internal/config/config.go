package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Gateway keys and base URLs
// live here and are injected into the workflow at construction; nothing
// downstream reads ambient process state.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	BcryptCost     int    // bcrypt cost for staff password hashing
	ScanBaseURL    string // frontend base URL embedded in table QR links
	SessionTTLMin  int    // table session expiry budget in minutes
	OTPTTLMin      int    // one-time code validity window in minutes
	Currency       string // currency code for payment intents
	RazorpayKeyID  string // payment gateway public key (optional)
	RazorpaySecret string // payment gateway secret (optional)
	SMTPHost       string // outgoing mail host (optional)
	SMTPPort       string // outgoing mail port
	SMTPUser       string // outgoing mail account
	SMTPPass       string // outgoing mail password
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message;
// collaborator credentials are optional so a deployment without
// payments or email still starts.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		ScanBaseURL:    must("SCAN_BASE_URL"),
		SessionTTLMin:  intOr("TABLE_SESSION_TTL_MIN", 30),
		OTPTTLMin:      intOr("OTP_TTL_MIN", 5),
		Currency:       strOr("PAYMENT_CURRENCY", "INR"),
		RazorpayKeyID:  os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       strOr("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
