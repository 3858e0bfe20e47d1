package volumiwled

// This file contains the loading and validation of the bridge configuration.
// The configuration is read once at startup, any problem with it is fatal.

import (
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/lucasb-eyer/go-colorful"

	"gopkg.in/yaml.v2"
)

const (
	defaultVolumioPort    = 3000
	defaultUpdateInterval = time.Second
	defaultTimeout        = 2 * time.Second
)

// EffectConfig holds the settings shared by the two render modes
type EffectConfig struct {
	Enabled bool
	Color   RGB
}

// RotationConfig adds the per frame delay used by the spinning record
type RotationConfig struct {
	EffectConfig
	Speed time.Duration
}

type VolumioConfig struct {
	Host string
	Port int
}

type WLEDConfig struct {
	Host string
}

// OPCConfig selects an Open Pixel Control server, such as fcserver driving
// fadecandy boards, as the output in place of WLED
type OPCConfig struct {
	Server  string
	Channel uint8
}

// StripConfig is the process wide configuration, it is not modified after
// loading
type StripConfig struct {
	LEDCount   int
	Brightness int

	Progress EffectConfig
	Rotation RotationConfig

	UpdateInterval time.Duration
	Timeout        time.Duration

	Volumio VolumioConfig
	WLED    WLEDConfig
	OPC     OPCConfig
}

// DimBrightness is the brightness used to signal a paused player when no
// progress bar can be shown
func (cfg *StripConfig) DimBrightness() int {
	return cfg.Brightness / 4
}

// yamlColor accepts either a [r, g, b] list or a "#rrggbb" hex string
type yamlColor struct {
	RGB
}

func (c *yamlColor) UnmarshalYAML(unmarshal func(interface{}) error) (errGo error) {
	channels := []int{}
	if errGo = unmarshal(&channels); errGo == nil {
		if len(channels) != 3 {
			return fmt.Errorf("color needs exactly 3 channels, got %d", len(channels))
		}
		c.RGB = NewRGB(channels[0], channels[1], channels[2])
		return nil
	}

	hex := ""
	if errGo = unmarshal(&hex); errGo != nil {
		return fmt.Errorf("color must be a [r, g, b] list or a hex string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	parsed, errGo := colorful.Hex(hex)
	if errGo != nil {
		return errGo
	}
	r, g, b := parsed.RGB255()
	c.RGB = RGB{R: r, G: g, B: b}
	return nil
}

type yamlEffect struct {
	Enabled bool       `yaml:"enabled"`
	Color   *yamlColor `yaml:"color"`
	Speed   *int       `yaml:"speed"`
}

type yamlConfig struct {
	LED struct {
		Count      *int `yaml:"count"`
		Brightness *int `yaml:"brightness"`
	} `yaml:"led"`
	Effects struct {
		ProgressBar   yamlEffect `yaml:"progress_bar"`
		VinylRotation yamlEffect `yaml:"vinyl_rotation"`
	} `yaml:"effects"`
	UpdateInterval *float64 `yaml:"update_interval"`
	Timeout        *float64 `yaml:"timeout"`
	Volumio        struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"volumio"`
	WLED struct {
		Host string `yaml:"host"`
	} `yaml:"wled"`
	OPC struct {
		Server  string `yaml:"server"`
		Channel int    `yaml:"channel"`
	} `yaml:"opc"`
}

// LoadConfig reads and validates the YAML configuration file fn
func LoadConfig(fn string) (cfg *StripConfig, err errors.Error) {
	data, errGo := ioutil.ReadFile(fn)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("file", fn).With("stack", stack.Trace().TrimRuntime())
	}
	if cfg, err = ParseConfig(data); err != nil {
		return nil, err.With("file", fn)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML configuration document
func ParseConfig(data []byte) (cfg *StripConfig, err errors.Error) {
	doc := &yamlConfig{}
	if errGo := yaml.Unmarshal(data, doc); errGo != nil {
		return nil, errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	if doc.LED.Count == nil {
		return nil, missingKey("led.count")
	}
	if doc.LED.Brightness == nil {
		return nil, missingKey("led.brightness")
	}

	cfg = &StripConfig{
		LEDCount:       *doc.LED.Count,
		Brightness:     *doc.LED.Brightness,
		UpdateInterval: defaultUpdateInterval,
		Timeout:        defaultTimeout,
		Volumio: VolumioConfig{
			Host: doc.Volumio.Host,
			Port: doc.Volumio.Port,
		},
		WLED: WLEDConfig{
			Host: doc.WLED.Host,
		},
		OPC: OPCConfig{
			Server: doc.OPC.Server,
		},
	}
	if cfg.Volumio.Port == 0 {
		cfg.Volumio.Port = defaultVolumioPort
	}

	if doc.OPC.Channel < 0 || doc.OPC.Channel > 255 {
		return nil, invalidValue("opc.channel", doc.OPC.Channel)
	}
	cfg.OPC.Channel = uint8(doc.OPC.Channel)

	if doc.UpdateInterval != nil {
		if *doc.UpdateInterval <= 0 {
			return nil, invalidValue("update_interval", *doc.UpdateInterval)
		}
		cfg.UpdateInterval = time.Duration(*doc.UpdateInterval * float64(time.Second))
	}
	if doc.Timeout != nil {
		if *doc.Timeout <= 0 {
			return nil, invalidValue("timeout", *doc.Timeout)
		}
		cfg.Timeout = time.Duration(*doc.Timeout * float64(time.Second))
	}

	cfg.Progress.Enabled = doc.Effects.ProgressBar.Enabled
	if doc.Effects.ProgressBar.Color != nil {
		cfg.Progress.Color = doc.Effects.ProgressBar.Color.RGB
	} else if cfg.Progress.Enabled {
		return nil, missingKey("effects.progress_bar.color")
	}

	cfg.Rotation.Enabled = doc.Effects.VinylRotation.Enabled
	if doc.Effects.VinylRotation.Color != nil {
		cfg.Rotation.Color = doc.Effects.VinylRotation.Color.RGB
	} else if cfg.Rotation.Enabled {
		return nil, missingKey("effects.vinyl_rotation.color")
	}
	if speed := doc.Effects.VinylRotation.Speed; speed != nil {
		if *speed < 0 {
			return nil, invalidValue("effects.vinyl_rotation.speed", *speed)
		}
		cfg.Rotation.Speed = time.Duration(*speed) * time.Millisecond
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges of a configuration, including one that was
// built in code rather than loaded
func (cfg *StripConfig) Validate() (err errors.Error) {
	if cfg.LEDCount < 1 {
		return invalidValue("led.count", cfg.LEDCount)
	}
	if cfg.Brightness < 0 || cfg.Brightness > 255 {
		return invalidValue("led.brightness", cfg.Brightness)
	}
	if cfg.Rotation.Speed < 0 {
		return invalidValue("effects.vinyl_rotation.speed", cfg.Rotation.Speed)
	}
	if cfg.UpdateInterval <= 0 {
		return invalidValue("update_interval", cfg.UpdateInterval)
	}
	if cfg.Volumio.Host == "" {
		return missingKey("volumio.host")
	}
	if cfg.Volumio.Port < 1 || cfg.Volumio.Port > 65535 {
		return invalidValue("volumio.port", cfg.Volumio.Port)
	}
	if cfg.WLED.Host == "" && cfg.OPC.Server == "" {
		return missingKey("wled.host")
	}
	return nil
}

func missingKey(key string) (err errors.Error) {
	return errors.New("missing required configuration key").With("key", key).With("stack", stack.Trace().TrimRuntime())
}

func invalidValue(key string, value interface{}) (err errors.Error) {
	return errors.New("configuration value out of range").With("key", key).With("value", value).With("stack", stack.Trace().TrimRuntime())
}
