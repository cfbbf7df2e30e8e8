package agent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zbum/moncollector/internal/transport"
)

// remoteFolderFallback is used only when the remote temp-dir probe returns
// an empty path, matching the original's fixed fallback.
const remoteFolderFallback = "/var/tmp/lunapark_monitoring"

// Options configures a Client beyond what Spec itself carries.
type Options struct {
	// PayloadDir is the local directory recursively copied to the remote
	// host (the agent program + its metric scripts).
	PayloadDir string
	// ArtifactDir is where local temp config/log files are created.
	ArtifactDir string
	// ForceDebugEnv mirrors the original's unconditional `DEBUG=1` (spec §9
	// item a), now an explicit, overridable flag. NewClient does not change
	// it, so the zero value leaves it off; the collector config's
	// force_debug_env key is what defaults it to true.
	ForceDebugEnv bool
	// LogLevel is written into the generated agent.cfg ("info" or "debug").
	LogLevel string
}

// Handle is a running agent: its spec, the live child-process handle, and
// the paths involved in its lifecycle (spec §3 AgentHandle). The transport
// it was launched through stays with the Client.
type Handle struct {
	Spec         Spec
	RemoteDir    string
	LocalConfig  string
	LocalLog     string
	launchArgv   []string
	Process      *transport.Process
}

// Client drives one remote agent's install/start/uninstall lifecycle,
// bound to a single Transport for the lifetime of the agent (spec §4.4).
type Client struct {
	spec      Spec
	transport transport.Transport
	opts      Options
	logger    *zap.Logger

	remoteDir   string
	localConfig string
	launchArgv  []string
}

// NewClient binds a Client to spec via the given Transport.
func NewClient(spec Spec, t transport.Transport, opts Options, logger *zap.Logger) *Client {
	if opts.PayloadDir == "" {
		opts.PayloadDir = "./agent"
	}
	if opts.ArtifactDir == "" {
		opts.ArtifactDir = os.TempDir()
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "info"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{spec: spec, transport: t, opts: opts, logger: logger}
}

// Install generates the agent config, probes the remote filesystem for a
// working directory, copies the agent payload and config there, and
// resolves the launch command line (spec §4.4 install). Returns the local
// config file path, which is also kept as an artifact.
func (c *Client) Install(ctx context.Context) (localConfigPath string, err error) {
	c.logger.Info("installing monitoring agent", zap.String("host", c.spec.Host))

	localConfigPath, err = c.writeAgentConfig()
	if err != nil {
		return "", &InstallError{Host: c.spec.Host, Op: "write config", Err: err}
	}
	c.localConfig = localConfigPath

	remoteDir, err := c.probeRemoteDir(ctx)
	if err != nil {
		return "", err
	}
	c.remoteDir = remoteDir

	copyAgent, err := c.transport.Copy(ctx, c.opts.PayloadDir, transport.RemoteRef(c.spec.Host, c.remoteDir), true)
	if err != nil {
		return "", &InstallError{Host: c.spec.Host, Op: "copy agent payload", Err: err}
	}
	if code := copyAgent.Wait(); code != 0 {
		return "", &InstallError{Host: c.spec.Host, Op: "copy agent payload", Code: code}
	}

	copyConfig, err := c.transport.Copy(ctx, localConfigPath, transport.RemoteRef(c.spec.Host, c.remoteDir+"/agent.cfg"), false)
	if err != nil {
		return "", &InstallError{Host: c.spec.Host, Op: "copy agent config", Err: err}
	}
	if code := copyConfig.Wait(); code != 0 {
		return "", &InstallError{Host: c.spec.Host, Op: "copy agent config", Code: code}
	}

	debugFlag := ""
	if c.opts.ForceDebugEnv {
		debugFlag = "DEBUG=1"
	}
	c.launchArgv = []string{
		"/usr/bin/env", debugFlag, c.spec.Python,
		c.remoteDir + "/agent/agent.py", "-c", c.remoteDir + "/agent.cfg",
	}

	return localConfigPath, nil
}

// probeRemoteDir runs the remote one-liner that creates and prints a fresh
// temp directory. A non-empty stderr is treated as fatal (spec §9 item b);
// a non-zero exit code is an install error; an empty stdout falls back to a
// fixed path.
func (c *Client) probeRemoteDir(ctx context.Context) (string, error) {
	probe := fmt.Sprintf(`%s -c "import tempfile; print(tempfile.mkdtemp())"`, c.spec.Python)
	p, err := c.transport.ExecRemote(ctx, []string{probe})
	if err != nil {
		return "", &InstallError{Host: c.spec.Host, Op: "probe remote dir", Err: err}
	}

	stderr := p.ReadAllStderr()
	line, _ := transport.ReadLine(p.Stdout)
	code := p.Wait()

	if strings.TrimSpace(stderr) != "" {
		return "", &TransportError{Host: c.spec.Host, Op: "probe remote dir", Err: fmt.Errorf("ssh error: %q", strings.TrimSpace(stderr))}
	}
	if code != 0 {
		return "", &InstallError{Host: c.spec.Host, Op: "probe remote dir", Code: code}
	}

	dir := strings.TrimSpace(line)
	if dir == "" {
		dir = remoteFolderFallback
	}
	return dir, nil
}

// Start launches the agent via the bound transport, appending the current
// wall-clock epoch as `-t <epoch>` — the only synchronization signal passed
// to the agent (spec §4.4 start). Refuses to start if Install hasn't run.
func (c *Client) Start(ctx context.Context) (*Handle, error) {
	if len(c.launchArgv) == 0 {
		return nil, &InstallError{Host: c.spec.Host, Op: "start", Err: fmt.Errorf("empty run string: install must run first")}
	}

	argv := append([]string{}, c.launchArgv...)
	argv = append(argv, "-t", strconv.FormatInt(time.Now().Unix(), 10))

	proc, err := c.transport.ExecRemote(ctx, argv)
	if err != nil {
		return nil, &TransportError{Host: c.spec.Host, Op: "start", Err: err}
	}

	c.logger.Debug("started agent", zap.String("host", c.spec.Host), zap.Int("pid", proc.Pid))

	return &Handle{
		Spec:        c.spec,
		RemoteDir:   c.remoteDir,
		LocalConfig: c.localConfig,
		launchArgv:  argv,
		Process:     proc,
	}, nil
}

// Uninstall fetches the remote agent log and removes the remote working
// directory. Both steps are best-effort: non-zero exit codes are logged,
// never raised (spec §4.4 uninstall). Returns the local log path regardless
// of whether the fetch actually succeeded.
func (c *Client) Uninstall(ctx context.Context) string {
	logPath := filepath.Join(c.opts.ArtifactDir, fmt.Sprintf("agent_%s_%s.log", c.spec.Host, uuid.NewString()))

	fetch, err := c.transport.Copy(ctx, transport.RemoteRef(c.spec.Host, c.remoteDir+"_agent.log"), logPath, false)
	if err != nil {
		c.logger.Warn("fetch agent log failed", zap.String("host", c.spec.Host), zap.Error(err))
	} else if code := fetch.Wait(); code != 0 {
		c.logger.Warn("fetch agent log exited non-zero", zap.String("host", c.spec.Host), zap.Int("code", code))
	}

	c.logger.Info("removing agent", zap.String("host", c.spec.Host))
	rm, err := c.transport.ExecRemote(ctx, []string{"rm", "-r", c.remoteDir})
	if err != nil {
		c.logger.Warn("remote cleanup failed", zap.String("host", c.spec.Host), zap.Error(err))
	} else if code := rm.Wait(); code != 0 {
		c.logger.Warn("remote cleanup exited non-zero", zap.String("host", c.spec.Host), zap.Int("code", code))
	}

	return logPath
}

// writeAgentConfig renders the agent.cfg INI document (spec §6) and writes
// it to a fresh local temp file, returned as the artifact path.
func (c *Client) writeAgentConfig() (string, error) {
	cfg := ini.Empty()

	main, err := cfg.NewSection("main")
	if err != nil {
		return "", err
	}
	main.NewKey("interval", strconv.Itoa(c.spec.Interval))
	main.NewKey("host", c.spec.Host)
	main.NewKey("loglevel", c.opts.LogLevel)

	metric, err := cfg.NewSection("metric")
	if err != nil {
		return "", err
	}
	metric.NewKey("names", c.spec.Metric)

	custom, err := cfg.NewSection("custom")
	if err != nil {
		return "", err
	}
	for _, method := range []string{"tail", "call"} {
		if vals := c.spec.Custom[method]; len(vals) > 0 {
			custom.NewKey(method, strings.Join(vals, ","))
		}
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.opts.ArtifactDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(c.opts.ArtifactDir, fmt.Sprintf("agent_%s_%s.cfg", c.spec.Host, uuid.NewString()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
