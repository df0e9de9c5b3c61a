package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The struct is built once at startup and passed by
// value to every component that needs it; nothing mutates it afterwards.
type Config struct {
    Env        string // application environment (e.g. "dev", "prod")
    Port       string // HTTP port to listen on
    DBUser     string // database username
    DBPass     string // database password (optional)
    DBHost     string // database host address
    DBPort     string // database port number
    DBName     string // database name
    JWTSecret  string // secret used to sign JWTs
    BcryptCost int    // bcrypt cost for password hashing

    APIURL string // base URL of this API, used to build OAuth callback URLs
    UIURL  string // base URL of the web UI, fallback host for email links

    UploadDir string // directory for uploaded files

    BrokerURL string // AMQP endpoint for the email queue; empty disables it

    Mail  MailConfig  // SMTP transport settings (optional)
    OAuth OAuthConfig // social sign-in provider credentials (optional)

    AdminEmail   string // seed admin account email (demo reset)
    AdminPass    string // seed admin account password (demo reset)
    ResetEnabled bool   // when true, demo data is wiped and reseeded hourly
}

// MailConfig carries SMTP transport settings.  When Host is empty the mail
// subsystem is considered unconfigured: transactional emails are skipped and
// the email-verification requirement on signin is waived.
type MailConfig struct {
    From string // sender address
    Host string // SMTP server host; empty disables mail entirely
    Port int    // SMTP server port
    User string // SMTP auth username
    Pass string // SMTP auth password
}

// OAuthConfig holds per-provider OAuth2 client credentials.  A provider with
// an empty client id is disabled and its signin routes return an error.
type OAuthConfig struct {
    GoogleClientID        string
    GoogleClientSecret    string
    MicrosoftClientID     string
    MicrosoftClientSecret string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Mail, OAuth and the
// demo reset job are optional and default to disabled.
func Load() Config {
    return Config{
        Env:        must("APP_ENV"),        // environment (dev/test/prod)
        Port:       must("APP_PORT"),       // port to bind the HTTP server
        DBUser:     must("DB_USER"),        // database user
        DBPass:     os.Getenv("DB_PASS"),   // database password (empty allowed)
        DBHost:     must("DB_HOST"),        // database host
        DBPort:     must("DB_PORT"),        // database port
        DBName:     must("DB_NAME"),        // database name
        JWTSecret:  must("JWT_SECRET"),     // secret used for signing JWTs
        BcryptCost: mustInt("BCRYPT_COST"), // bcrypt cost factor

        APIURL: getenv("API_URL", "http://localhost:8080"),
        UIURL:  getenv("UI_URL", "http://localhost:3000"),

        UploadDir: getenv("UPLOAD_DIR", os.TempDir()),

        BrokerURL: getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),

        Mail: MailConfig{
            From: getenv("SMTP_FROM", "support@flatlogic.com"),
            Host: os.Getenv("SMTP_HOST"),
            Port: atoi(getenv("SMTP_PORT", "587")),
            User: os.Getenv("SMTP_USER"),
            Pass: os.Getenv("SMTP_PASS"),
        },
        OAuth: OAuthConfig{
            GoogleClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
            GoogleClientSecret:    os.Getenv("GOOGLE_CLIENT_SECRET"),
            MicrosoftClientID:     os.Getenv("MICROSOFT_CLIENT_ID"),
            MicrosoftClientSecret: os.Getenv("MICROSOFT_CLIENT_SECRET"),
        },

        AdminEmail:   getenv("ADMIN_EMAIL", "admin@flatlogic.com"),
        AdminPass:    getenv("ADMIN_PASS", "password"),
        ResetEnabled: getenv("RESET_ENABLED", "false") == "true",
    }
}

// MailConfigured reports whether the SMTP transport is usable.  Services gate
// every transactional email on this check.
func (c Config) MailConfigured() bool {
    return c.Mail.Host != ""
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
