package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress          string
	DatabaseURI         string
	EmailGatewayAddress string
	ChatGatewayAddress  string
	StorageAddress      string
	AdminEmails         []string
	FromEmail           string
	ChatRoomID          string
	SendTimeout         time.Duration
	LogLevel            string
}

func Parse() *Config {
	// .env is optional, real env vars win below
	_ = godotenv.Load()

	cfg := Config{
		// Defaults
		RunAddress:          "localhost:8080",
		EmailGatewayAddress: "http://localhost:8025",
		ChatGatewayAddress:  "http://localhost:8030",
		StorageAddress:      "http://localhost:9000",
		AdminEmails:         []string{"admin@handywriterz.com"},
		FromEmail:           "orders@handywriterz.com",
		ChatRoomID:          "orders",
		SendTimeout:         10 * time.Second,
		LogLevel:            "debug",
	}
	cfg.updateFromFlags()
	cfg.updateFromEnv()
	return &cfg
}

func (cfg *Config) updateFromFlags() {
	flagRunAddress := flag.String("a", cfg.RunAddress, "Server address.")
	flagDatabaseURI := flag.String("d", cfg.DatabaseURI, "Postgres DSN.")
	flagEmailAddress := flag.String("e", cfg.EmailGatewayAddress, "Email gateway address.")
	flagChatAddress := flag.String("c", cfg.ChatGatewayAddress, "Chat-bot gateway address.")
	flagStorageAddress := flag.String("s", cfg.StorageAddress, "Object storage address.")

	flag.Parse()

	cfg.RunAddress = *flagRunAddress
	cfg.DatabaseURI = *flagDatabaseURI
	cfg.EmailGatewayAddress = *flagEmailAddress
	cfg.ChatGatewayAddress = *flagChatAddress
	cfg.StorageAddress = *flagStorageAddress
}

func (cfg *Config) updateFromEnv() {
	if addr, ok := os.LookupEnv("RUN_ADDRESS"); ok {
		cfg.RunAddress = addr
	}
	if db, ok := os.LookupEnv("DATABASE_URI"); ok {
		cfg.DatabaseURI = db
	}
	if addr, ok := os.LookupEnv("EMAIL_GATEWAY_ADDRESS"); ok {
		cfg.EmailGatewayAddress = addr
	}
	if addr, ok := os.LookupEnv("CHAT_GATEWAY_ADDRESS"); ok {
		cfg.ChatGatewayAddress = addr
	}
	if addr, ok := os.LookupEnv("STORAGE_ADDRESS"); ok {
		cfg.StorageAddress = addr
	}
	if emails, ok := os.LookupEnv("ADMIN_EMAILS"); ok {
		cfg.AdminEmails = strings.Split(emails, ",")
	}
	if from, ok := os.LookupEnv("FROM_EMAIL"); ok {
		cfg.FromEmail = from
	}
	if room, ok := os.LookupEnv("CHAT_ROOM_ID"); ok {
		cfg.ChatRoomID = room
	}
	if t, ok := os.LookupEnv("SEND_TIMEOUT"); ok {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.SendTimeout = d
		}
	}
	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = lvl
	}
}
