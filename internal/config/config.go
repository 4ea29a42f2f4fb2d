// Package config provides application configuration management.
package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oszuidwest/zwfm-audioscan/internal/types"
	"github.com/oszuidwest/zwfm-audioscan/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultDetector           = "pulse"
	DefaultPollIntervalMs     = 2000  // 2 seconds between poll cycles
	DefaultCooldownMs         = 30000 // 30 seconds between notifications for the same stream
	DefaultIdleTimeoutMs      = 5000  // 5 seconds of inactivity before a stream counts as idle
	DefaultGracePeriodMs      = 30000 // 30 seconds without Teams audio before a capture stops
	DefaultCaptureDir         = "captures"
	DefaultVirtualSinkName    = "audioscan_sink"
	DefaultCaptureSampleRate  = 16000
	DefaultCaptureChannels    = 1
	DefaultCaptureMaxDuration = 240 // minutes
)

// Default pattern groups matched by the daemon.
var (
	DefaultTeamsPatterns   = []string{"microsoft teams", "teams.microsoft.com", "teams meeting"}
	DefaultYouTubePatterns = []string{"youtube", "youtu.be"}
)

// validate is the shared validator instance for configuration validation.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// DetectionConfig holds stream detection settings.
type DetectionConfig struct {
	Detector       string `json:"detector" validate:"omitempty,oneof=pulse browser hybrid"` // State detection strategy
	PollIntervalMs int64  `json:"poll_interval_ms" validate:"omitempty,gte=100"`            // Milliseconds between poll cycles
	CooldownMs     int64  `json:"cooldown_ms" validate:"omitempty,gte=0"`                   // Per-stream notification cooldown
	IdleTimeoutMs  int64  `json:"idle_timeout_ms" validate:"omitempty,gte=0"`               // Inactivity before IDLE
	DebugPort      int    `json:"debug_port" validate:"omitempty,gte=1,lte=65535"`          // Chrome remote debugging port
}

// TargetConfig holds one pattern group matched against detected streams.
type TargetConfig struct {
	Enabled  bool     `json:"enabled"`  // Whether this group triggers notifications
	Patterns []string `json:"patterns"` // Case-insensitive substrings
}

// TargetsConfig holds all pattern groups.
type TargetsConfig struct {
	Teams   TargetConfig `json:"teams"`   // Microsoft Teams patterns
	YouTube TargetConfig `json:"youtube"` // YouTube patterns
	Custom  TargetConfig `json:"custom"`  // User-defined patterns
}

// RoutingConfig holds virtual sink settings for stream isolation.
type RoutingConfig struct {
	VirtualSinkName string `json:"virtual_sink_name"` // Null sink created for isolated capture
}

// S3Config holds S3-compatible storage settings for capture uploads.
type S3Config struct {
	Endpoint        string `json:"endpoint" validate:"omitempty,url"` // S3-compatible endpoint URL
	Bucket          string `json:"bucket"`                            // Bucket name
	AccessKeyID     string `json:"access_key_id"`                     // Access key ID
	SecretAccessKey string `json:"secret_access_key"`                 // Secret access key
	Prefix          string `json:"prefix"`                            // Key prefix for uploaded captures
}

// IsConfigured reports whether the S3 settings are complete enough to upload.
func (s *S3Config) IsConfigured() bool {
	return util.IsConfigured(s.Bucket, s.AccessKeyID, s.SecretAccessKey)
}

// CaptureConfig holds automatic meeting capture settings.
type CaptureConfig struct {
	Enabled            bool     `json:"enabled"`                                          // Whether auto-capture is active
	OutputDir          string   `json:"output_dir"`                                       // Directory for capture files
	FFmpegPath         string   `json:"ffmpeg_path"`                                      // Path to FFmpeg binary (empty = use PATH)
	GracePeriodMs      int64    `json:"grace_period_ms" validate:"omitempty,gte=0"`       // Time without Teams audio before stopping
	MaxDurationMinutes int      `json:"max_duration_minutes" validate:"omitempty,gte=1"`  // Hard cap on one capture
	SampleRate         int      `json:"sample_rate" validate:"omitempty,oneof=8000 16000 44100 48000"` // Capture sample rate
	S3                 S3Config `json:"s3"`                                               // Optional upload target
}

// WebhookConfig holds webhook notification settings.
type WebhookConfig struct {
	URL string `json:"url" validate:"omitempty,url"` // Webhook URL for stream alerts
}

// LogConfig holds event log settings.
type LogConfig struct {
	Path string `json:"path"` // JSONL log file path for detection events
}

// NotificationsConfig holds all notification channel settings.
type NotificationsConfig struct {
	Webhook WebhookConfig     `json:"webhook"` // Webhook settings
	Log     LogConfig         `json:"log"`     // Event log settings
	Email   types.GraphConfig `json:"email"`   // Microsoft Graph email settings
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	Detection     DetectionConfig     `json:"detection"`
	Targets       TargetsConfig       `json:"targets"`
	Routing       RoutingConfig       `json:"routing"`
	Capture       CaptureConfig       `json:"capture"`
	Notifications NotificationsConfig `json:"notifications"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		Detection: DetectionConfig{
			Detector:       DefaultDetector,
			PollIntervalMs: DefaultPollIntervalMs,
			CooldownMs:     DefaultCooldownMs,
			IdleTimeoutMs:  DefaultIdleTimeoutMs,
			DebugPort:      types.DefaultDebugPort,
		},
		Targets: TargetsConfig{
			Teams:   TargetConfig{Enabled: true, Patterns: slices.Clone(DefaultTeamsPatterns)},
			YouTube: TargetConfig{Enabled: true, Patterns: slices.Clone(DefaultYouTubePatterns)},
			Custom:  TargetConfig{Patterns: []string{}},
		},
		Routing: RoutingConfig{VirtualSinkName: DefaultVirtualSinkName},
		Capture: CaptureConfig{
			OutputDir:          DefaultCaptureDir,
			GracePeriodMs:      DefaultGracePeriodMs,
			MaxDurationMinutes: DefaultCaptureMaxDuration,
			SampleRate:         DefaultCaptureSampleRate,
		},
		filePath: filePath,
	}
}

// Load reads config from file, creating a default if none exists.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	return c.validateLocked()
}

// validateLocked checks all configuration fields. Caller must hold c.mu.
func (c *Config) validateLocked() error {
	if err := validate.Struct(c); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			verr := types.NewValidationError()
			for _, e := range validationErrors {
				verr.Add(e.Field(), formatValidationMessage(e), e.Value())
			}
			return fmt.Errorf("invalid configuration: %+v", verr.Errors)
		}
		return err
	}

	if c.Capture.Enabled {
		if err := util.ValidatePath("capture.output_dir", c.Capture.OutputDir); err != nil {
			return err
		}
	}

	return nil
}

// formatValidationMessage creates a human-readable message from a validator error.
func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.Detection.Detector == "" {
		c.Detection.Detector = DefaultDetector
	}
	if c.Detection.PollIntervalMs == 0 {
		c.Detection.PollIntervalMs = DefaultPollIntervalMs
	}
	if c.Detection.CooldownMs == 0 {
		c.Detection.CooldownMs = DefaultCooldownMs
	}
	if c.Detection.IdleTimeoutMs == 0 {
		c.Detection.IdleTimeoutMs = DefaultIdleTimeoutMs
	}
	if c.Detection.DebugPort == 0 {
		c.Detection.DebugPort = types.DefaultDebugPort
	}
	if c.Targets.Teams.Patterns == nil {
		c.Targets.Teams.Patterns = slices.Clone(DefaultTeamsPatterns)
	}
	if c.Targets.YouTube.Patterns == nil {
		c.Targets.YouTube.Patterns = slices.Clone(DefaultYouTubePatterns)
	}
	if c.Targets.Custom.Patterns == nil {
		c.Targets.Custom.Patterns = []string{}
	}
	if c.Routing.VirtualSinkName == "" {
		c.Routing.VirtualSinkName = DefaultVirtualSinkName
	}
	if c.Capture.OutputDir == "" {
		c.Capture.OutputDir = DefaultCaptureDir
	}
	if c.Capture.GracePeriodMs == 0 {
		c.Capture.GracePeriodMs = DefaultGracePeriodMs
	}
	if c.Capture.MaxDurationMinutes == 0 {
		c.Capture.MaxDurationMinutes = DefaultCaptureMaxDuration
	}
	if c.Capture.SampleRate == 0 {
		c.Capture.SampleRate = DefaultCaptureSampleRate
	}
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// Save persists the current configuration.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// --- Snapshot for atomic reads ---

// Snapshot is a point-in-time copy of configuration values.
type Snapshot struct {
	// Detection
	Detector     string
	PollInterval time.Duration
	Cooldown     time.Duration
	IdleTimeout  time.Duration
	DebugPort    int

	// Targets
	Teams   TargetConfig
	YouTube TargetConfig
	Custom  TargetConfig

	// Routing
	VirtualSinkName string

	// Capture
	CaptureEnabled     bool
	CaptureOutputDir   string
	FFmpegPath         string
	GracePeriod        time.Duration
	MaxCaptureDuration time.Duration
	SampleRate         int
	S3                 S3Config

	// Notifications
	WebhookURL string
	LogPath    string
	Graph      types.GraphConfig
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Detector:     cmp.Or(c.Detection.Detector, DefaultDetector),
		PollInterval: time.Duration(cmp.Or(c.Detection.PollIntervalMs, DefaultPollIntervalMs)) * time.Millisecond,
		Cooldown:     time.Duration(cmp.Or(c.Detection.CooldownMs, DefaultCooldownMs)) * time.Millisecond,
		IdleTimeout:  time.Duration(cmp.Or(c.Detection.IdleTimeoutMs, DefaultIdleTimeoutMs)) * time.Millisecond,
		DebugPort:    cmp.Or(c.Detection.DebugPort, types.DefaultDebugPort),

		Teams:   cloneTarget(c.Targets.Teams),
		YouTube: cloneTarget(c.Targets.YouTube),
		Custom:  cloneTarget(c.Targets.Custom),

		VirtualSinkName: cmp.Or(c.Routing.VirtualSinkName, DefaultVirtualSinkName),

		CaptureEnabled:     c.Capture.Enabled,
		CaptureOutputDir:   cmp.Or(c.Capture.OutputDir, DefaultCaptureDir),
		FFmpegPath:         c.Capture.FFmpegPath,
		GracePeriod:        time.Duration(cmp.Or(c.Capture.GracePeriodMs, DefaultGracePeriodMs)) * time.Millisecond,
		MaxCaptureDuration: time.Duration(cmp.Or(c.Capture.MaxDurationMinutes, DefaultCaptureMaxDuration)) * time.Minute,
		SampleRate:         cmp.Or(c.Capture.SampleRate, DefaultCaptureSampleRate),
		S3:                 c.Capture.S3,

		WebhookURL: c.Notifications.Webhook.URL,
		LogPath:    c.Notifications.Log.Path,
		Graph:      c.Notifications.Email,
	}
}

// cloneTarget returns a deep copy of a pattern group.
func cloneTarget(t TargetConfig) TargetConfig {
	return TargetConfig{Enabled: t.Enabled, Patterns: slices.Clone(t.Patterns)}
}

// DetectorConfig returns the detector construction parameters.
func (s *Snapshot) DetectorConfig() types.DetectorConfig {
	return types.DetectorConfig{
		IdleTimeout: s.IdleTimeout,
		DebugPort:   s.DebugPort,
	}
}

// HasWebhook reports whether a webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasLogPath reports whether an event log path is configured.
func (s *Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}
