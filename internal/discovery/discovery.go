package discovery

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/opencode"
	"github.com/wk-j/opencode-helix/internal/process"
)

// Discovery failures.
var (
	ErrNoServerFound    = errors.New("no opencode server found")
	ErrAmbiguousServers = errors.New("multiple opencode servers match")
	ErrProbeTimeout     = errors.New("probing servers timed out")
)

// Defaults used when Options leaves a field zero.
const (
	DefaultProbeTimeout     = time.Second
	DefaultDiscoveryTimeout = 3 * time.Second
	DefaultMaxProbes        = 8
	DefaultServerCommand    = "opencode"
)

// Server is the selected assistant server.
type Server struct {
	Endpoint         string    `json:"endpoint" yaml:"endpoint"`
	Port             int       `json:"port" yaml:"port"`
	PID              int       `json:"pid,omitempty" yaml:"pid,omitempty"`
	WorkingDirectory string    `json:"working_directory" yaml:"working_directory"`
	StartedAt        time.Time `json:"started_at,omitzero" yaml:"started_at,omitempty"`
}

// Candidate is one probed server process.
type Candidate struct {
	Server
	// Match is the length of the matched ancestor path, or -1 when the
	// server directory is not an ancestor of the working directory.
	Match int `json:"match"`
	// Err is the probe failure, nil when the server answered.
	Err error `json:"-"`
}

// Prober reads the working directory of the server on port.
type Prober interface {
	Probe(ctx context.Context, port int) (string, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, port int) (string, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, port int) (string, error) {
	return f(ctx, port)
}

// HTTPProber probes servers with the opencode HTTP client.
type HTTPProber struct {
	Options []opencode.Option
}

// Probe implements Prober.
func (p HTTPProber) Probe(ctx context.Context, port int) (string, error) {
	info, err := opencode.New(port, p.Options...).Probe(ctx)
	if err != nil {
		return "", err
	}
	return info.WorkingDirectory(), nil
}

// Options configures a discovery run. Lister and Prober are required.
type Options struct {
	Cwd              string
	Port             int
	Lister           process.Lister
	Prober           Prober
	ProbeTimeout     time.Duration
	DiscoveryTimeout time.Duration
	MaxProbes        int
	ServerCommand    string
	Logger           *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	if o.DiscoveryTimeout <= 0 {
		o.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	if o.MaxProbes <= 0 {
		o.MaxProbes = DefaultMaxProbes
	}
	if o.ServerCommand == "" {
		o.ServerCommand = DefaultServerCommand
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Discover returns the server for opts.Cwd. With opts.Port set only that
// port is probed and the working directory is not checked.
func Discover(ctx context.Context, opts Options) (Server, error) {
	opts = opts.withDefaults()

	if opts.Port > 0 {
		return probePort(ctx, opts)
	}

	candidates, err := Candidates(ctx, opts)
	if err != nil {
		return Server{}, err
	}
	return Select(candidates, opts.Cwd)
}

func probePort(ctx context.Context, opts Options) (Server, error) {
	pctx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
	defer cancel()

	dir, err := opts.Prober.Probe(pctx, opts.Port)
	if err != nil {
		opts.Logger.Debug("probe failed", "port", opts.Port, "error", err)
		if errors.Is(err, opencode.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return Server{}, errors.Mark(errors.Wrapf(err, "port %d", opts.Port), ErrProbeTimeout)
		}
		return Server{}, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "no opencode server responding on port %d", opts.Port), opencode.ErrUnreachable),
			"start one with: opencode --port "+strconv.Itoa(opts.Port),
		)
	}

	return Server{
		Endpoint:         opencode.Endpoint(opts.Port),
		Port:             opts.Port,
		WorkingDirectory: dir,
	}, nil
}

// Candidates lists server processes and probes each of them in parallel.
// Probe failures are recorded on the candidate. The result is ordered by
// port. Exceeding the overall deadline fails with ErrProbeTimeout.
func Candidates(ctx context.Context, opts Options) ([]Candidate, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	procs, err := opts.Lister.List(ctx)
	if err != nil {
		return nil, errors.Mark(err, ErrNoServerFound)
	}

	targets := serverProcesses(procs, opts.ServerCommand)
	if len(targets) == 0 {
		return nil, errors.WithHint(
			errors.Mark(errors.New("no opencode process with --port is running"), ErrNoServerFound),
			"start opencode with: opencode --port <port>",
		)
	}
	log.Debug("probing candidates", "count", len(targets), "max_parallel", opts.MaxProbes)

	dctx, cancel := context.WithTimeout(ctx, opts.DiscoveryTimeout)
	defer cancel()

	cwd := canonical(opts.Cwd)
	p := pool.NewWithResults[Candidate]().WithMaxGoroutines(opts.MaxProbes)
	for _, t := range targets {
		p.Go(func() Candidate {
			return probe(dctx, opts, t, cwd)
		})
	}
	candidates := p.Wait()

	slices.SortFunc(candidates, func(a, b Candidate) int {
		return a.Port - b.Port
	})

	if dctx.Err() != nil && ctx.Err() == nil && anyFailed(candidates) {
		return candidates, errors.Mark(
			errors.Newf("discovery deadline of %s exceeded", opts.DiscoveryTimeout),
			ErrProbeTimeout,
		)
	}
	if ctx.Err() != nil {
		return candidates, errors.Wrap(ctx.Err(), "discovery interrupted")
	}

	return candidates, nil
}

type target struct {
	pid     int
	port    int
	started time.Time
}

// serverProcesses keeps server invocations, one per port, the latest
// started process winning a shared port.
func serverProcesses(procs []process.Process, command string) []target {
	byPort := make(map[int]target)
	for _, p := range procs {
		if !process.IsServer(p.CommandLine, command) {
			continue
		}
		port, _ := process.Port(p.CommandLine)
		if prev, ok := byPort[port]; ok && !p.StartTime.After(prev.started) {
			continue
		}
		byPort[port] = target{pid: p.PID, port: port, started: p.StartTime}
	}

	targets := make([]target, 0, len(byPort))
	for _, t := range byPort {
		targets = append(targets, t)
	}
	slices.SortFunc(targets, func(a, b target) int { return a.port - b.port })
	return targets
}

func probe(ctx context.Context, opts Options, t target, cwd string) Candidate {
	c := Candidate{
		Server: Server{
			Endpoint:  opencode.Endpoint(t.port),
			Port:      t.port,
			PID:       t.pid,
			StartedAt: t.started,
		},
		Match: -1,
	}

	pctx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
	defer cancel()

	start := time.Now()
	dir, err := opts.Prober.Probe(pctx, t.port)
	if err != nil {
		opts.Logger.Debug("probe failed", "port", t.port, "pid", t.pid, "error", err)
		c.Err = err
		return c
	}

	c.WorkingDirectory = dir
	c.Match = MatchLength(dir, cwd)
	opts.Logger.Debug("probe ok",
		"port", t.port,
		"pid", t.pid,
		"dir", dir,
		"match", c.Match,
		"elapsed", time.Since(start),
	)
	return c
}

func anyFailed(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Err != nil {
			return true
		}
	}
	return false
}

// Select picks the deepest matching candidate that answered its probe,
// breaking ties by the most recent start time.
func Select(candidates []Candidate, cwd string) (Server, error) {
	cwd = canonical(cwd)

	var (
		best     []Candidate
		bestLen  = -1
		answered int
	)
	for _, c := range candidates {
		if c.Err != nil {
			continue
		}
		answered++

		n := MatchLength(c.WorkingDirectory, cwd)
		switch {
		case n < 0 || n < bestLen:
		case n > bestLen:
			bestLen = n
			best = []Candidate{c}
		default:
			best = append(best, c)
		}
	}

	if len(best) == 0 {
		if answered == 0 && len(candidates) > 0 {
			return Server{}, errors.WithHint(
				errors.Mark(errors.Newf("none of %d opencode processes answered", len(candidates)), ErrNoServerFound),
				"check that the server is healthy or pass --port",
			)
		}
		return Server{}, errors.WithHint(
			errors.Mark(errors.Newf("no opencode server serves %s", cwd), ErrNoServerFound),
			"run opencode from the project root or pass --port",
		)
	}

	slices.SortStableFunc(best, func(a, b Candidate) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if len(best) > 1 && best[0].StartedAt.Equal(best[1].StartedAt) {
		var ports []string
		for _, c := range best {
			if c.StartedAt.Equal(best[0].StartedAt) {
				ports = append(ports, strconv.Itoa(c.Port))
			}
		}
		return Server{}, errors.WithHint(
			errors.Mark(errors.Newf("servers on ports %s all serve %s", strings.Join(ports, ", "), best[0].WorkingDirectory), ErrAmbiguousServers),
			"pass --port to choose one",
		)
	}

	return best[0].Server, nil
}
