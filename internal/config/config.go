package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Gateway  GatewayConfig
	Receipt  ReceiptConfig
	Schedule ScheduleConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	OrgName            string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type GatewayConfig struct {
	Default            string
	ChargeTimeoutSecs  int
	MidtransServerKey  string
	MidtransProduction bool
	XenditSecretKey    string
	XenditBaseURL      string
	XenditCallbackTok  string
}

type ReceiptConfig struct {
	SinglePrefix string
	AnnualPrefix string
	StorageDir   string
}

type ScheduleConfig struct {
	ChargeCron    string
	ReconcileCron string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			OrgName:            getEnv("ORG_NAME", "Grace Community Church"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Stewardship"),
		},
		Gateway: GatewayConfig{
			Default:            getEnv("PAYMENT_GATEWAY", "midtrans"),
			ChargeTimeoutSecs:  getEnvAsInt("GATEWAY_CHARGE_TIMEOUT_SECS", 30),
			MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
			XenditSecretKey:    getEnv("XENDIT_SECRET_KEY", ""),
			XenditBaseURL:      getEnv("XENDIT_BASE_URL", "https://api.xendit.co"),
			XenditCallbackTok:  getEnv("XENDIT_CALLBACK_TOKEN", ""),
		},
		Receipt: ReceiptConfig{
			SinglePrefix: getEnv("RECEIPT_SINGLE_PREFIX", "DR"),
			AnnualPrefix: getEnv("RECEIPT_ANNUAL_PREFIX", "AR"),
			StorageDir:   getEnv("RECEIPT_STORAGE_DIR", "storage/receipts"),
		},
		Schedule: ScheduleConfig{
			ChargeCron:    getEnv("RECURRING_CHARGE_CRON", "0 6 * * *"),
			ReconcileCron: getEnv("RECEIPT_RECONCILE_CRON", "30 6 * * *"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
