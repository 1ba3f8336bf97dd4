package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/naoina/toml"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// NewConfig creates a default configuration.
func NewConfig(options ...ConfigOption) Config {
	c := Config{
		WorkDir:         DefaultWorkDir,
		Runtime:         DefaultRuntime,
		Port:            DefaultPort,
		PollInterval:    DefaultPollInterval,
		JobPollInterval: DefaultJobPollInterval,
	}

	for _, opt := range options {
		opt(&c)
	}

	return c
}

// ConfigOption - for overriding configurations.
type ConfigOption func(*Config)

// ConfigOptionWorkDir sets the shared rendezvous directory.
func ConfigOptionWorkDir(dir string) ConfigOption {
	return func(c *Config) {
		c.WorkDir = dir
	}
}

// ConfigOptionRuntime sets the runtime binary.
func ConfigOptionRuntime(binary string) ConfigOption {
	return func(c *Config) {
		c.Runtime = binary
	}
}

// ConfigOptionPort sets the port of the runtime head.
func ConfigOptionPort(port int) ConfigOption {
	return func(c *Config) {
		c.Port = port
	}
}

// ConfigOptionNodeIP sets the ip advertised by the runtime head.
func ConfigOptionNodeIP(ip string) ConfigOption {
	return func(c *Config) {
		c.NodeIP = ip
	}
}

// ConfigOptionPollInterval sets the interval between rendezvous checks.
func ConfigOptionPollInterval(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// ConfigOptionJobPollInterval sets the interval between job exit checks.
func ConfigOptionJobPollInterval(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.JobPollInterval = d
	}
}

// ConfigOptionTimeout bounds the entire run, zero disables.
func ConfigOptionTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// ConfigOptionWatch enables waking early on filesystem events.
func ConfigOptionWatch(b bool) ConfigOption {
	return func(c *Config) {
		c.Watch = b
	}
}

// ConfigOptionPropagateExit coordinator exits with the job's status.
func ConfigOptionPropagateExit(b bool) ConfigOption {
	return func(c *Config) {
		c.PropagateExit = b
	}
}

// Config - configuration for the launcher.
type Config struct {
	WorkDir         string        `yaml:"workDir"`
	Runtime         string        `yaml:"runtime"`
	Port            int           `yaml:"port"`
	NodeIP          string        `yaml:"nodeIP"`
	PollInterval    time.Duration `yaml:"pollInterval"`
	JobPollInterval time.Duration `yaml:"jobPollInterval"`
	Timeout         time.Duration `yaml:"timeout"`
	Watch           bool          `yaml:"watch"`
	PropagateExit   bool          `yaml:"propagateExit"`
}

// LoadConfig create a new configuration from the specified path using the provided
// configuration as the default values. the format is chosen by extension, .toml
// files are decoded as toml everything else as yaml. a missing file is not an error.
func LoadConfig(path string, proto Config) (Config, error) {
	var (
		err error
		raw []byte
	)

	if raw, err = os.ReadFile(path); os.IsNotExist(err) {
		return proto, nil
	} else if err != nil {
		return proto, errors.Wrapf(err, "unable to read configuration: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = ExpandAndDecodeTOML(raw, &proto)
	default:
		err = ExpandAndDecode(raw, &proto)
	}

	return proto, errors.Wrapf(err, "unable to decode configuration: %s", path)
}

// ExpandAndDecode expands environment variables within the raw configuration and
// then decodes it as yaml.
func ExpandAndDecode(raw []byte, dst interface{}) (err error) {
	return ExpandEnvironAndDecode(raw, dst, os.Getenv)
}

// ExpandEnvironAndDecode ...
func ExpandEnvironAndDecode(raw []byte, dst interface{}, mapping func(string) string) (err error) {
	return yaml.Unmarshal([]byte(os.Expand(string(raw), mapping)), dst)
}

// ExpandAndDecodeTOML expands environment variables within the raw configuration
// and then decodes it as toml.
func ExpandAndDecodeTOML(raw []byte, c *Config) (err error) {
	return ExpandEnvironAndDecodeTOML(raw, c, os.Getenv)
}

// ExpandEnvironAndDecodeTOML ...
func ExpandEnvironAndDecodeTOML(raw []byte, c *Config, mapping func(string) string) (err error) {
	t := tomlConfig{
		WorkDir:         c.WorkDir,
		Runtime:         c.Runtime,
		Port:            c.Port,
		NodeIP:          c.NodeIP,
		PollInterval:    duration(c.PollInterval),
		JobPollInterval: duration(c.JobPollInterval),
		Timeout:         duration(c.Timeout),
		Watch:           c.Watch,
		PropagateExit:   c.PropagateExit,
	}

	if err = toml.Unmarshal([]byte(os.Expand(string(raw), mapping)), &t); err != nil {
		return err
	}

	*c = Config{
		WorkDir:         t.WorkDir,
		Runtime:         t.Runtime,
		Port:            t.Port,
		NodeIP:          t.NodeIP,
		PollInterval:    time.Duration(t.PollInterval),
		JobPollInterval: time.Duration(t.JobPollInterval),
		Timeout:         time.Duration(t.Timeout),
		Watch:           t.Watch,
		PropagateExit:   t.PropagateExit,
	}

	return nil
}

// toml counterpart of Config, durations are written as strings e.g. "5s".
type tomlConfig struct {
	WorkDir         string   `toml:"work_dir"`
	Runtime         string   `toml:"runtime"`
	Port            int      `toml:"port"`
	NodeIP          string   `toml:"node_ip"`
	PollInterval    duration `toml:"poll_interval"`
	JobPollInterval duration `toml:"job_poll_interval"`
	Timeout         duration `toml:"timeout"`
	Watch           bool     `toml:"watch"`
	PropagateExit   bool     `toml:"propagate_exit"`
}

type duration time.Duration

func (t *duration) UnmarshalText(b []byte) (err error) {
	var d time.Duration

	if d, err = time.ParseDuration(string(b)); err != nil {
		return errors.WithStack(err)
	}

	*t = duration(d)
	return nil
}
