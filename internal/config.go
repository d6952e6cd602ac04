package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/reminder"
	"github.com/starford/daybook/internal/view"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Calendar  CalendarConfig    `yaml:"calendar"`
	Reminders RemindersConfig   `yaml:"reminders"`
	Inbox     InboxConfig       `yaml:"inbox"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Calendar.Validate(); err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	if err := c.Reminders.Validate(); err != nil {
		return fmt.Errorf("reminders: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CalendarConfig controls labels, the zone days are anchored in and the
// canvas geometry used for pointer hit-testing.
type CalendarConfig struct {
	Locale   grid.Locale  `yaml:"locale"`
	Timezone string       `yaml:"timezone"`
	Canvas   CanvasConfig `yaml:"canvas"`
}

// CanvasConfig is the drawing surface reported by graphical clients.
type CanvasConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	HeaderHeight float64 `yaml:"header_height"`
}

// Validate validates the calendar configuration.
func (c *CalendarConfig) Validate() error {
	if c.Locale == "" {
		c.Locale = grid.LocaleZH
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Locale, validation.In(grid.LocaleZH, grid.LocaleEN)),
		validation.Field(&c.Timezone, validation.By(loadableZone)),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Canvas,
		validation.Field(&c.Canvas.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&c.Canvas.Height, validation.Required, validation.Min(c.Canvas.HeaderHeight+1)),
		validation.Field(&c.Canvas.HeaderHeight, validation.Min(0.0)),
	)
}

func loadableZone(value any) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("unknown time zone")
	}
	return nil
}

// Location returns the configured zone, or the process local zone when
// none is set.
func (c *CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Layout returns the canvas as a hit-test layout.
func (c *CalendarConfig) Layout() view.Layout {
	return view.Layout{
		Width:        c.Canvas.Width,
		Height:       c.Canvas.Height,
		HeaderHeight: c.Canvas.HeaderHeight,
	}
}

// RemindersConfig controls the due-reminder dispatcher.
type RemindersConfig struct {
	Schedule string        `yaml:"schedule"`
	Lead     time.Duration `yaml:"lead"`
}

// Validate validates the reminders configuration.
func (c *RemindersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Schedule, validation.Required, validation.By(func(value any) error {
			spec, _ := value.(string)
			return reminder.ValidateSchedule(spec)
		})),
		validation.Field(&c.Lead, validation.Min(time.Duration(0))),
	)
}

// InboxConfig points at a directory of .ics files kept imported. An empty
// path turns the inbox off.
type InboxConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether an inbox directory is configured.
func (c *InboxConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Calendar: CalendarConfig{
			Locale: grid.LocaleZH,
			Canvas: CanvasConfig{
				Width:        view.CanvasLayout.Width,
				Height:       view.CanvasLayout.Height,
				HeaderHeight: view.CanvasLayout.HeaderHeight,
			},
		},
		Reminders: RemindersConfig{
			Schedule: reminder.DefaultSchedule,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
