package slidecrawler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the matching option is absent.
const (
	envApp        = "SLIDECRAWLER_APP"
	envAppLegacy  = "IMAGINATION"
	envConfig     = "SLIDECRAWLER_CONFIG"
	envToolPrefix = "SLIDECRAWLER_"
)

// fileConfig is the YAML layout of a config file:
//
//	app: /usr/local/bin/imagination
//	timeout: 10s
//	export_timeout: 5m
//	tools:
//	  tesseract: /opt/tesseract/bin/tesseract
//	fixture:
//	  width: 400
//	  height: 600
//	labels:
//	  export_progress: Exporting the slideshow
type fileConfig struct {
	App           string          `yaml:"app"`
	AppName       string          `yaml:"app_name"`
	Env           []string        `yaml:"env"`
	Timeout       time.Duration   `yaml:"timeout"`
	PollInterval  time.Duration   `yaml:"poll_interval"`
	StartTimeout  time.Duration   `yaml:"start_timeout"`
	QuitTimeout   time.Duration   `yaml:"quit_timeout"`
	ExportTimeout time.Duration   `yaml:"export_timeout"`
	ExportPoll    time.Duration   `yaml:"export_poll"`
	Settle        time.Duration   `yaml:"settle"`
	Tools         map[Tool]string `yaml:"tools"`
	Fixture       struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"fixture"`
	Labels *Labels `yaml:"labels"`
}

// loadConfig reads a config file. Labels absent from the file keep their
// default values.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*fileConfig, error) {
	labels := DefaultLabels()
	cfg := &fileConfig{Labels: &labels}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}

	for tool := range cfg.Tools {
		if !knownTool(tool) {
			return nil, fmt.Errorf("config: unknown tool %q", tool)
		}
	}
	if cfg.Fixture.Width < 0 || cfg.Fixture.Height < 0 {
		return nil, fmt.Errorf("config: negative fixture size %dx%d", cfg.Fixture.Width, cfg.Fixture.Height)
	}
	return cfg, nil
}

func knownTool(tool Tool) bool {
	switch tool {
	case ToolConvert, ToolExiftool, ToolFFmpeg, ToolTesseract:
		return true
	}
	return false
}

// applyEnv fills options the caller left unset from the environment.
func applyEnv(o *options, getenv func(string) string) {
	if o.appPath == "" {
		o.appPath = getenv(envApp)
	}
	if o.appPath == "" {
		o.appPath = getenv(envAppLegacy)
	}
	if o.configPath == "" {
		o.configPath = getenv(envConfig)
	}
	for _, tool := range []Tool{ToolConvert, ToolExiftool, ToolFFmpeg, ToolTesseract} {
		if o.tools[tool] != "" {
			continue
		}
		if v := getenv(toolEnv(tool)); v != "" {
			WithToolPath(tool, v)(o)
		}
	}
}

// toolEnv returns the environment variable naming a tool's path, e.g.
// SLIDECRAWLER_FFMPEG.
func toolEnv(tool Tool) string {
	return envToolPrefix + strings.ToUpper(string(tool))
}

// applyConfig fills options still unset after the caller and the
// environment had their say.
func applyConfig(o *options, cfg *fileConfig) {
	setDefault(&o.appPath, cfg.App)
	setDefault(&o.appName, cfg.AppName)
	setDefault(&o.timeout, cfg.Timeout)
	setDefault(&o.pollInterval, cfg.PollInterval)
	setDefault(&o.startTimeout, cfg.StartTimeout)
	setDefault(&o.quitTimeout, cfg.QuitTimeout)
	setDefault(&o.exportTimeout, cfg.ExportTimeout)
	setDefault(&o.exportPoll, cfg.ExportPoll)
	setDefault(&o.settle, cfg.Settle)
	setDefault(&o.fixtureWidth, cfg.Fixture.Width)
	setDefault(&o.fixtureHeight, cfg.Fixture.Height)
	o.env = append(append([]string(nil), cfg.Env...), o.env...)
	for tool, path := range cfg.Tools {
		if o.tools[tool] == "" && path != "" {
			WithToolPath(tool, path)(o)
		}
	}
	if o.labels == nil && cfg.Labels != nil {
		l := *cfg.Labels
		o.labels = &l
	}
}

// resolveOptions applies user options, then the environment, then the
// config file, then defaults.
func resolveOptions(userOpts []Option, getenv func(string) string) (options, error) {
	var o options
	for _, opt := range userOpts {
		opt(&o)
	}
	applyEnv(&o, getenv)
	if o.configPath != "" {
		cfg, err := loadConfig(o.configPath)
		if err != nil {
			return o, err
		}
		applyConfig(&o, cfg)
	}
	if err := validateOptions(&o); err != nil {
		return o, err
	}
	applyDefaults(&o)
	return o, nil
}

func validateOptions(o *options) error {
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"timeout", o.timeout},
		{"poll interval", o.pollInterval},
		{"start timeout", o.startTimeout},
		{"quit timeout", o.quitTimeout},
		{"export timeout", o.exportTimeout},
		{"export poll interval", o.exportPoll},
		{"settle", o.settle},
	}
	for _, d := range durations {
		if d.d < 0 {
			return invalidf("open", "negative %s: %v", d.name, d.d)
		}
	}
	if o.fixtureWidth < 0 || o.fixtureHeight < 0 {
		return invalidf("open", "negative fixture size %dx%d", o.fixtureWidth, o.fixtureHeight)
	}
	return nil
}
