package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pageocr.yaml"

// xdgConfigFile is the file name looked up inside the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .pageocr.yaml configuration file.
// Pointer fields distinguish "not set" from the zero value so that a file
// can turn a default off.
type File struct {
	Out     string   `yaml:"out,omitempty"`
	Ratio   *float64 `yaml:"ratio,omitempty"`
	Force   *bool    `yaml:"force,omitempty"`
	PNG     *bool    `yaml:"png,omitempty"`
	JSON    *bool    `yaml:"json,omitempty"`
	Text    *bool    `yaml:"text,omitempty"`
	Pretty  *bool    `yaml:"pretty,omitempty"`
	Locales []string `yaml:"locales,omitempty"`
	Engine  string   `yaml:"engine,omitempty"`
	History *bool    `yaml:"history,omitempty"`
	DBDir   string   `yaml:"dbDir,omitempty"`

	LogFormat string `yaml:"logFormat,omitempty"`

	Tesseract TesseractFile `yaml:"tesseract,omitempty"`
	Azure     AzureFile     `yaml:"azure,omitempty"`
}

// TesseractFile holds tesseract engine settings.
type TesseractFile struct {
	// TessdataPrefix is the directory containing *.traineddata files.
	TessdataPrefix string `yaml:"tessdataPrefix,omitempty"`
}

// AzureFile holds Azure Document Intelligence settings.
type AzureFile struct {
	Endpoint     string        `yaml:"endpoint,omitempty"`
	Key          string        `yaml:"key,omitempty"`
	APIVersion   string        `yaml:"apiVersion,omitempty"`
	Model        string        `yaml:"model,omitempty"`
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every value set in the file onto c.
func (cf *File) Apply(c *Config) {
	if cf.Out != "" {
		c.OutDir = cf.Out
	}
	if cf.Ratio != nil {
		c.Ratio = *cf.Ratio
	}
	if cf.Force != nil {
		c.Force = *cf.Force
	}
	if cf.PNG != nil {
		c.PNG = *cf.PNG
	}
	if cf.JSON != nil {
		c.JSON = *cf.JSON
	}
	if cf.Text != nil {
		c.Text = TextFromBool(*cf.Text)
	}
	if cf.Pretty != nil {
		c.Pretty = *cf.Pretty
	}
	if len(cf.Locales) > 0 {
		c.Locales = append([]string(nil), cf.Locales...)
	}
	if cf.Engine != "" {
		c.Engine = cf.Engine
	}
	if cf.History != nil {
		c.History = *cf.History
	}
	if cf.DBDir != "" {
		c.DBDir = cf.DBDir
	}
	if cf.LogFormat != "" {
		c.LogFormat = cf.LogFormat
	}
	if cf.Tesseract.TessdataPrefix != "" {
		c.TessdataPrefix = cf.Tesseract.TessdataPrefix
	}

	az := cf.Azure
	if az.Endpoint != "" {
		c.AzureEndpoint = az.Endpoint
	}
	if az.Key != "" {
		c.AzureKey = az.Key
	}
	if az.APIVersion != "" {
		c.AzureAPIVersion = az.APIVersion
	}
	if az.Model != "" {
		c.AzureModel = az.Model
	}
	if az.PollInterval != 0 {
		c.AzurePollInterval = az.PollInterval
	}
	if az.Timeout != 0 {
		c.Timeout = az.Timeout
	}
}

// ApplyEnv fills settings that may come from the environment when they are
// still empty. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c.AzureKey != "" {
		return
	}
	if v, ok := lookup(EnvAzureKey); ok {
		c.AzureKey = v
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .pageocr.yaml in the current directory
//  3. config.yaml in the XDG config directory
//  4. .pageocr.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
