package internal

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig  `mapstructure:"http_server"`
	Discord  DiscordConfig `mapstructure:"discord"`
	Google   GoogleConfig  `mapstructure:"google"`
	Channels ChannelConfig `mapstructure:"channels"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DiscordConfig struct {
	PublicKey      string        `mapstructure:"public_key" validate:"required"`
	BotToken       string        `mapstructure:"bot_token" validate:"required"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type GoogleConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id" validate:"required"`
	CredentialsJSON string `mapstructure:"credentials_json" validate:"required"`
	CalendarID      string `mapstructure:"calendar_id"`
	// AdminSubject is the Workspace admin email impersonated for Meet audit
	// reports. Leave empty to disable /auditmeet.
	AdminSubject string `mapstructure:"admin_subject"`
}

// ChannelConfig holds the channel and role IDs used for per-command
// allow-listing and notification routing.
type ChannelConfig struct {
	Attendance      string `mapstructure:"attendance"`
	LeaveRequests   string `mapstructure:"leave_requests"`
	LeaveStatus     string `mapstructure:"leave_status"`
	Approver        string `mapstructure:"approver"`
	ApproverUserID  string `mapstructure:"approver_user_id"`
	Finance         string `mapstructure:"finance"`
	ContentRequests string `mapstructure:"content_requests"`
	AssetsReviews   string `mapstructure:"assets_reviews"`
	ContentTeam     string `mapstructure:"content_team"`
	HRRoleID        string `mapstructure:"hr_role_id"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Label returns the human-readable channel label for a configured channel ID,
// falling back to a channel mention when the ID is not one of ours.
func (c *ChannelConfig) Label(channelID string) string {
	switch channelID {
	case "":
		return "the configured channel"
	case c.Attendance:
		return "#attendance"
	case c.LeaveRequests:
		return "#leave-requests"
	case c.LeaveStatus:
		return "#leave-status"
	case c.Finance:
		return "#finance"
	case c.ContentRequests:
		return "#content-requests"
	case c.AssetsReviews:
		return "#assets-reviews"
	case c.ContentTeam:
		return "#content-team"
	}
	return fmt.Sprintf("<#%s>", channelID)
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration entirely from environment
// variables. Used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Discord: DiscordConfig{
			PublicKey:      getEnv("DISCORD_PUBLIC_KEY", ""),
			BotToken:       getEnv("BOT_TOKEN", ""),
			APIBaseURL:     getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),
			RequestTimeout: 15 * time.Second,
		},
		Google: GoogleConfig{
			SpreadsheetID:   getEnv("SHEET_ID", ""),
			CredentialsJSON: getEnv("SERVICE_ACCOUNT_JSON", ""),
			CalendarID:      getEnv("CALENDAR_ID", "primary"),
			AdminSubject:    getEnv("ADMIN_SUBJECT", ""),
		},
		Channels: ChannelConfig{
			Attendance:      getEnv("ATTENDANCE_CHANNEL_ID", ""),
			LeaveRequests:   getEnv("LEAVE_REQUESTS_CHANNEL_ID", ""),
			LeaveStatus:     getEnv("LEAVE_STATUS_CHANNEL_ID", ""),
			Approver:        getEnv("APPROVER_CHANNEL_ID", ""),
			ApproverUserID:  getEnv("APPROVER_USER_ID", ""),
			Finance:         getEnv("FINANCE_CHANNEL_ID", ""),
			ContentRequests: getEnv("CONTENT_REQUESTS_CHANNEL_ID", ""),
			AssetsReviews:   getEnv("ASSETS_REVIEWS_CHANNEL_ID", ""),
			ContentTeam:     getEnv("CONTENT_TEAM_CHANNEL_ID", ""),
			HRRoleID:        getEnv("HR_ROLE_ID", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Discord.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("discord config: %v", err))
	}

	if err := c.Google.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("google config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DiscordConfig) Validate() error {
	if c.PublicKey == "" {
		return errors.New("public_key is required")
	}
	raw, err := hex.DecodeString(c.PublicKey)
	if err != nil {
		return fmt.Errorf("public_key is not valid hex: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("public_key must decode to 32 bytes, got %d", len(raw))
	}
	if c.BotToken == "" {
		return errors.New("bot_token is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}

func (c *GoogleConfig) Validate() error {
	if c.SpreadsheetID == "" {
		return errors.New("spreadsheet_id is required")
	}
	if c.CredentialsJSON == "" {
		return errors.New("credentials_json is required")
	}
	return nil
}
