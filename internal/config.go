package internal

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/menushare/internal/imageembed"
	"github.com/starford/menushare/internal/sharecodec"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Share  ShareConfig       `yaml:"share"`
	Auth   AuthConfig        `yaml:"auth"`
	Images ImagesConfig      `yaml:"images"`
	Menu   MenuConfig        `yaml:"menu"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Share.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Images.Validate(); err != nil {
		return err
	}
	if err := c.Menu.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
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

// ShareConfig controls generated share links.
type ShareConfig struct {
	// BaseURL is the address of the page that renders shared menus.
	BaseURL    string `yaml:"base_url"`
	WarnLength int    `yaml:"warn_length"`
}

// Validate validates the share configuration.
func (c *ShareConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteHTTPURL)),
		validation.Field(&c.WarnLength, validation.Required, validation.Min(1)),
	)
}

func absoluteHTTPURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}

// AuthConfig protects the editor routes of the API.
//
// Mode controls who may edit:
//   - "disabled" (default): anyone who can reach the API.
//   - "token": editing and sharing need a Bearer token; Token must be
//     non-empty. Viewer routes stay open either way.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
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

// AuthEnabled reports whether editor routes require the token.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ImagesConfig controls how uploaded images are embedded.
type ImagesConfig struct {
	MaxDimension   uint  `yaml:"max_dimension"`
	JPEGQuality    int   `yaml:"jpeg_quality"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// Validate validates the images configuration.
func (c *ImagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxDimension, validation.Required, validation.Min(uint(16))),
		validation.Field(&c.JPEGQuality, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1024))),
	)
}

// Options converts the config into embedding options.
func (c *ImagesConfig) Options() imageembed.Options {
	return imageembed.Options{
		MaxDimension: c.MaxDimension,
		JPEGQuality:  c.JPEGQuality,
		MaxBytes:     c.MaxUploadBytes,
	}
}

// MenuConfig selects where the initial menu comes from.
//
// ImportPath seeds an editable menu from a YAML, JSON or XLSX file; with
// Watch set the file is re-imported whenever it changes. Fragment opens a
// share link instead, which makes the menu read-only. The two are exclusive.
type MenuConfig struct {
	ImportPath string `yaml:"import_path"`
	Watch      bool   `yaml:"watch"`
	Fragment   string `yaml:"fragment"`
}

// Validate validates the menu configuration.
func (c *MenuConfig) Validate() error {
	if c.ImportPath != "" && c.Fragment != "" {
		return fmt.Errorf("menu: import_path and fragment are mutually exclusive")
	}
	if c.Watch && c.ImportPath == "" {
		return fmt.Errorf("menu: watch requires import_path")
	}
	return nil
}

// EventsConfig controls the SSE stream.
type EventsConfig struct {
	Throttle  time.Duration `yaml:"throttle"`
	KeepAlive time.Duration `yaml:"keep_alive"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.KeepAlive, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	img := imageembed.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Share: ShareConfig{
			BaseURL:    "http://localhost:8080/",
			WarnLength: sharecodec.DefaultWarnLength,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Images: ImagesConfig{
			MaxDimension:   img.MaxDimension,
			JPEGQuality:    img.JPEGQuality,
			MaxUploadBytes: img.MaxBytes,
		},
		Events: EventsConfig{
			Throttle:  500 * time.Millisecond,
			KeepAlive: 15 * time.Second,
		},
	}
}
