package slidecrawler

import (
	"log/slog"
	"time"

	"github.com/cboone/slidecrawler/a11y"
)

// Tool names an external command-line tool the harness invokes.
type Tool string

const (
	// ToolConvert renders text to images and auto-orients/trims them.
	ToolConvert Tool = "convert"
	// ToolExiftool rewrites EXIF orientation tags.
	ToolExiftool Tool = "exiftool"
	// ToolFFmpeg extracts still frames from exported videos.
	ToolFFmpeg Tool = "ffmpeg"
	// ToolTesseract recognises text in images.
	ToolTesseract Tool = "tesseract"
)

type options struct {
	appPath       string
	appName       string
	env           []string
	timeout       time.Duration
	pollInterval  time.Duration
	startTimeout  time.Duration
	quitTimeout   time.Duration
	exportTimeout time.Duration
	exportPoll    time.Duration
	settle        time.Duration
	tools         map[Tool]string
	fixtureWidth  int
	fixtureHeight int
	labels        *Labels
	configPath    string
	driver        a11y.Driver
	launcher      Launcher
	logger        *slog.Logger
}

// Option configures a Session created by Open.
type Option func(*options)

// WithAppPath sets the path to the application binary. The
// SLIDECRAWLER_APP environment variable (or the legacy IMAGINATION) can
// also be used, before the config file and a $PATH lookup.
func WithAppPath(path string) Option {
	return func(o *options) {
		o.appPath = path
	}
}

// WithAppName sets the accessible name the application registers under.
func WithAppName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

// WithEnv appends environment variables to the application's environment.
// Each entry should be in "KEY=VALUE" format.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithTimeout sets the default timeout for element lookups and WaitFor.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithPollInterval sets the default polling interval for lookups and WaitFor.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithStartTimeout sets how long Start waits for the application to
// register with the accessibility bus.
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) {
		o.startTimeout = d
	}
}

// WithQuitTimeout sets how long Quit waits for the application to die.
func WithQuitTimeout(d time.Duration) Option {
	return func(o *options) {
		o.quitTimeout = d
	}
}

// WithExportTimeout sets how long Export waits for the progress dialog to
// finish, and how often it checks.
func WithExportTimeout(d, poll time.Duration) Option {
	return func(o *options) {
		o.exportTimeout = d
		o.exportPoll = poll
	}
}

// WithSettle sets the pause between opening a menu and clicking one of its
// items. Menus populate asynchronously.
func WithSettle(d time.Duration) Option {
	return func(o *options) {
		o.settle = d
	}
}

// WithToolPath sets the path to an external tool. The SLIDECRAWLER_<TOOL>
// environment variable (e.g. SLIDECRAWLER_FFMPEG) can also be used, before
// the config file and a $PATH lookup.
func WithToolPath(tool Tool, path string) Option {
	return func(o *options) {
		if o.tools == nil {
			o.tools = make(map[Tool]string)
		}
		o.tools[tool] = path
	}
}

// WithFixtureSize sets the canvas size of TextToImage fixtures.
func WithFixtureSize(width, height int) Option {
	return func(o *options) {
		o.fixtureWidth = width
		o.fixtureHeight = height
	}
}

// WithLabels replaces the accessible names and descriptions the harness
// looks for.
func WithLabels(l Labels) Option {
	return func(o *options) {
		o.labels = &l
	}
}

// WithConfigFile loads defaults from a YAML file. SLIDECRAWLER_CONFIG names
// one when this option is absent. Options always win over the file.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithDriver sets the accessibility driver. By default the session connects
// to the AT-SPI bus on first Start.
func WithDriver(d a11y.Driver) Option {
	return func(o *options) {
		o.driver = d
	}
}

// WithLauncher sets how the application process is started. By default it
// is executed directly.
func WithLauncher(l Launcher) Option {
	return func(o *options) {
		o.launcher = l
	}
}

// WithLogger sets the session logger. By default records go to t.Log.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WaitOption configures a single WaitFor call.
type WaitOption func(*waitOptions)

type waitOptions struct {
	timeout      time.Duration
	pollInterval time.Duration
}

// WithinTimeout overrides the call timeout for a single wait call.
// A value of 0 means "use defaults". Negative values cause t.Fatal.
func WithinTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = d
	}
}

// WithWaitPollInterval overrides the polling interval for a single wait call.
// A value of 0 means "use defaults". Negative values cause t.Fatal.
// Positive values under 10ms are clamped to 10ms.
func WithWaitPollInterval(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.pollInterval = d
	}
}

const (
	defaultAppName       = "imagination"
	defaultTimeout       = 5 * time.Second
	defaultPollInterval  = 100 * time.Millisecond
	defaultStartTimeout  = 10 * time.Second
	defaultQuitTimeout   = 2 * time.Second
	defaultExportTimeout = 2 * time.Minute
	defaultExportPoll    = 300 * time.Millisecond
	defaultSettle        = 100 * time.Millisecond
	defaultFixtureWidth  = 400
	defaultFixtureHeight = 600
	minPollInterval      = 10 * time.Millisecond
)

// applyDefaults fills every option left unset by the caller, the
// environment and the config file.
func applyDefaults(o *options) {
	setDefault(&o.appName, defaultAppName)
	setDefault(&o.timeout, defaultTimeout)
	setDefault(&o.pollInterval, defaultPollInterval)
	setDefault(&o.startTimeout, defaultStartTimeout)
	setDefault(&o.quitTimeout, defaultQuitTimeout)
	setDefault(&o.exportTimeout, defaultExportTimeout)
	setDefault(&o.exportPoll, defaultExportPoll)
	setDefault(&o.settle, defaultSettle)
	setDefault(&o.fixtureWidth, defaultFixtureWidth)
	setDefault(&o.fixtureHeight, defaultFixtureHeight)
	if o.pollInterval < minPollInterval {
		o.pollInterval = minPollInterval
	}
	if o.exportPoll < minPollInterval {
		o.exportPoll = minPollInterval
	}
	if o.labels == nil {
		l := DefaultLabels()
		o.labels = &l
	}
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}
