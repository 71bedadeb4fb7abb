package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Content     ContentConfig     `yaml:"content"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Frontmatter FrontmatterConfig `yaml:"frontmatter"`
	Images      ImagesConfig      `yaml:"images"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if err := c.Frontmatter.Validate(); err != nil {
		return err
	}
	return c.Images.Validate()
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

// HTTPConfig holds the status server configuration used by watch mode.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the status server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the path to the directory scanned for posts.
type ContentConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// LedgerConfig holds the location of the fingerprint store.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the ledger configuration.
func (c *LedgerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// FrontmatterConfig holds the normalization policy.
//
// Marker delimits metadata blocks and must be exactly three characters.
// SynthesizeMissing controls whether documents without a block get a fresh
// minimal one; when false such documents are left untouched.
type FrontmatterConfig struct {
	Marker            string `yaml:"marker"`
	DefaultCategory   string `yaml:"default_category"`
	SynthesizeMissing bool   `yaml:"synthesize_missing"`
}

// Validate validates the frontmatter configuration.
func (c *FrontmatterConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Marker, validation.Required, validation.Length(3, 3)),
		validation.Field(&c.DefaultCategory, validation.Required),
	)
}

// ImagesConfig holds the image publishing configuration. The feature is
// optional: when both directories are empty the images command is simply
// unavailable.
type ImagesConfig struct {
	AttachmentsDir string `yaml:"attachments_dir"`
	StaticDir      string `yaml:"static_dir"`
	LinkPrefix     string `yaml:"link_prefix"`
}

// Enabled reports whether image publishing is configured.
func (c *ImagesConfig) Enabled() bool {
	return c.AttachmentsDir != "" && c.StaticDir != ""
}

// Validate validates the images configuration.
func (c *ImagesConfig) Validate() error {
	if c.AttachmentsDir == "" && c.StaticDir == "" {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.AttachmentsDir, validation.Required),
		validation.Field(&c.StaticDir, validation.Required),
		validation.Field(&c.LinkPrefix, validation.Required),
	)
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
		Content: ContentConfig{
			Root: "./content/posts",
		},
		Ledger: LedgerConfig{
			Path: "./hashes.tsv",
		},
		Frontmatter: FrontmatterConfig{
			Marker:            "---",
			DefaultCategory:   "Uncategorized",
			SynthesizeMissing: true,
		},
		Images: ImagesConfig{
			LinkPrefix: "/images",
		},
	}
}
