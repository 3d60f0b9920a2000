package config

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/pageocr/internal/apperr"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pageocr"

	// DefaultRatio renders pages at twice their document size. At 72 units
	// per inch this is 144 DPI, enough for OCR on typical body text.
	DefaultRatio = 2.0

	// DefaultOutDir is the output directory used when --out is not given.
	DefaultOutDir = "out"

	// DefaultEngine is the recognition engine used when none is configured.
	DefaultEngine = EngineTesseract

	// DefaultAzureAPIVersion is the Document Intelligence API version.
	DefaultAzureAPIVersion = "2024-11-30"

	// DefaultAzureModel is the prebuilt model used for recognition.
	DefaultAzureModel = "prebuilt-read"

	// DefaultAzurePollInterval is the delay between result polls.
	DefaultAzurePollInterval = time.Second

	// DefaultTimeout bounds a single recognition call to a remote engine.
	// Large scanned pages can take well over a minute on the service side.
	DefaultTimeout = 2 * time.Minute

	// EnvAzureKey is the environment variable consulted for the azure key
	// when neither the config file nor the flags provide one.
	EnvAzureKey = "PAGEOCR_AZURE_KEY"
)

// Supported log formats.
const (
	// LogFormatText writes logfmt-style lines.
	LogFormatText = "text"
	// LogFormatJSON writes one JSON object per line.
	LogFormatJSON = "json"
)

// Supported recognition engines.
const (
	// EngineTesseract runs recognition locally through libtesseract.
	EngineTesseract = "tesseract"
	// EngineAzure runs recognition with Azure AI Document Intelligence.
	EngineAzure = "azure"
)

// TextOutput is the three-valued transcript setting. It stays TextUnset
// unless the user asked for or against transcripts explicitly, and is turned
// into a plain boolean once by Config.TextEnabled.
type TextOutput int

const (
	// TextUnset means the user did not choose; the default depends on JSON.
	TextUnset TextOutput = iota
	// TextOn forces transcript output.
	TextOn
	// TextOff disables transcript output.
	TextOff
)

// TextFromBool converts an explicit choice into a TextOutput.
func TextFromBool(enabled bool) TextOutput {
	if enabled {
		return TextOn
	}
	return TextOff
}

// String returns the setting name.
func (t TextOutput) String() string {
	switch t {
	case TextOn:
		return "on"
	case TextOff:
		return "off"
	default:
		return "unset"
	}
}

// Config holds all settings of one conversion run. It is constructed once
// at start-up and passed explicitly; nothing reads settings from globals.
type Config struct {
	// Input is the path of the source document.
	Input string

	// OutDir is the directory artifacts are written to.
	OutDir string

	// Ratio is the raster scale factor applied to the page boundary.
	Ratio float64

	// Force allows existing artifacts to be replaced.
	Force bool

	// PNG enables the debug raster artifact.
	PNG bool

	// JSON enables the structured regions artifact.
	JSON bool

	// Text is the transcript setting. Use TextEnabled to resolve it.
	Text TextOutput

	// Locales restricts recognition to these BCP-47 locales.
	// Empty lets the engine use its default language set.
	Locales []string

	// Start is the first 1-based page to process, inclusive. Nil means 1.
	Start *int

	// End is the last 1-based page to process, inclusive. Nil means the
	// last page of the document.
	End *int

	// Engine is the recognition engine name.
	Engine string

	// Pretty indents the JSON artifact.
	Pretty bool

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat selects the stderr log encoding, text or json.
	LogFormat string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// History records the run in the history database.
	History bool

	// DBDir is the directory holding the history database.
	DBDir string

	// TessdataPrefix overrides the tesseract traineddata directory.
	TessdataPrefix string

	// AzureEndpoint is the Document Intelligence resource endpoint,
	// e.g. https://example.cognitiveservices.azure.com.
	AzureEndpoint string

	// AzureKey is the Document Intelligence subscription key.
	AzureKey string

	// AzureAPIVersion is the REST API version sent with each request.
	AzureAPIVersion string

	// AzureModel is the analyze model identifier.
	AzureModel string

	// AzurePollInterval is the delay between polls of a pending analysis.
	AzurePollInterval time.Duration

	// Timeout bounds a single remote recognition call.
	Timeout time.Duration
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		OutDir:            DefaultOutDir,
		Ratio:             DefaultRatio,
		Text:              TextUnset,
		Engine:            DefaultEngine,
		LogFormat:         LogFormatText,
		History:           true,
		DBDir:             XDGDataDir(),
		AzureAPIVersion:   DefaultAzureAPIVersion,
		AzureModel:        DefaultAzureModel,
		AzurePollInterval: DefaultAzurePollInterval,
		Timeout:           DefaultTimeout,
	}
}

// TextEnabled resolves the transcript setting: an explicit choice always
// wins, otherwise transcripts are written only when JSON is not requested.
func (c *Config) TextEnabled() bool {
	switch c.Text {
	case TextOn:
		return true
	case TextOff:
		return false
	default:
		return !c.JSON
	}
}

// XDGDataDir returns the XDG data directory for pageocr.
// On Linux: ~/.local/share/pageocr
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pageocr.
// On Linux: ~/.config/pageocr
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid. The returned error is an
// apperr configuration error wrapping one of the package sentinels.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return apperr.Configuration("validate config", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if c.OutDir == "" {
		return ErrNoOutputDir
	}

	// NaN compares false with everything, so test the positive case.
	if !(c.Ratio > 0) || math.IsInf(c.Ratio, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidRatio, c.Ratio)
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownLogFormat, c.LogFormat, LogFormatText, LogFormatJSON)
	}

	switch c.Engine {
	case EngineTesseract:
	case EngineAzure:
		if c.AzureEndpoint == "" {
			return ErrMissingAzureEndpoint
		}
		if c.AzureKey == "" {
			return ErrMissingAzureKey
		}
		if c.AzurePollInterval < 0 {
			return ErrInvalidPollInterval
		}
	default:
		return fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownEngine, c.Engine, EngineTesseract, EngineAzure)
	}

	return nil
}
