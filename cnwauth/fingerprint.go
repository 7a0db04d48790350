package cnwauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/user"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// fingerprintEnvVar overrides fingerprint generation entirely. Intended for
// containers and CI, where hardware signals are ephemeral.
const fingerprintEnvVar = "CNW_DEVICE_FINGERPRINT"

// computeTimeout bounds the one-shot signal collection. Probes shell out to
// platform tools, which can hang on broken WMI or diskutil installs.
const computeTimeout = 30 * time.Second

// Fingerprinter derives a stable machine identifier from hardware and OS
// signals. The identifier is computed once per process and cached; a fresh
// value requires a process restart.
//
// Signal collection is best-effort: a probe that fails is logged and skipped,
// never blocking the overall result. If everything fails the fingerprint
// degrades to hostname, username and OS, run through the same digest.
type Fingerprinter struct {
	log    zerolog.Logger
	probes probeSet

	once   sync.Once
	cached string
}

// FingerprinterOption configures a Fingerprinter.
type FingerprinterOption func(*Fingerprinter)

// WithFingerprintLogger sets the logger used for probe diagnostics.
func WithFingerprintLogger(log zerolog.Logger) FingerprinterOption {
	return func(f *Fingerprinter) {
		f.log = log
	}
}

// NewFingerprinter creates a Fingerprinter with the platform probe set for
// the current OS.
func NewFingerprinter(opts ...FingerprinterOption) *Fingerprinter {
	f := &Fingerprinter{
		log:    zerolog.Nop(),
		probes: defaultProbes(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DeviceFingerprint returns the machine identifier, computing it on first
// call. It never fails and is safe to call from any goroutine.
//
// Collection runs on its own bounded context rather than the caller's: the
// value is cached for the process lifetime, and a caller arriving with a
// cancelled or near-expired context must not lock in a degraded result.
//
// The result is a 36-character string of uppercase hex digits grouped
// 8-4-4-4-12, derived from a SHA-256 digest of the collected signals.
func (f *Fingerprinter) DeviceFingerprint(_ context.Context) string {
	f.once.Do(func() {
		if fp := os.Getenv(fingerprintEnvVar); fp != "" {
			f.cached = fp
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), computeTimeout)
		defer cancel()
		f.cached = f.compute(ctx)
		f.log.Debug().Str("fingerprint", f.cached).Msg("device fingerprint generated")
	})
	return f.cached
}

// compute collects all signals and reduces them to the formatted digest.
// Collection order is fixed; absent signals are omitted.
func (f *Fingerprinter) compute(ctx context.Context) (fp string) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error().Interface("panic", r).Msg("fingerprint collection panicked, using degraded fingerprint")
			fp = f.degraded()
		}
	}()

	var parts []string

	platform, version := f.probes.platform(ctx)
	parts = appendNonEmpty(parts, platform, version)

	if host, err := f.probes.hostname(); err != nil {
		f.log.Debug().Err(err).Msg("hostname probe failed")
	} else {
		parts = appendNonEmpty(parts, host)
	}

	if name, err := f.probes.username(); err != nil {
		f.log.Debug().Err(err).Msg("username probe failed")
	} else {
		parts = appendNonEmpty(parts, name)
	}

	// The remaining probes may shell out to platform tools. They share no
	// state, so issue them concurrently and merge in fixed order.
	var mac, cpu, disk, extra string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { mac = f.runProbe(gctx, "mac", f.probes.mac); return nil })
	g.Go(func() error { cpu = f.runProbe(gctx, "cpu", f.probes.cpu); return nil })
	g.Go(func() error { disk = f.runProbe(gctx, "disk", f.probes.disk); return nil })
	g.Go(func() error { extra = f.runProbe(gctx, "platform", f.probes.platformExtra); return nil })
	_ = g.Wait()

	parts = appendNonEmpty(parts, mac, cpu, disk, extra)

	if len(parts) == 0 {
		return f.degraded()
	}
	return formatFingerprint(parts)
}

// runProbe executes a single probe, absorbing its failure.
func (f *Fingerprinter) runProbe(ctx context.Context, name string, probe func(context.Context) (string, error)) string {
	v, err := probe(ctx)
	if err != nil {
		f.log.Debug().Err(err).Str("probe", name).Msg("fingerprint probe failed")
		return ""
	}
	return strings.TrimSpace(v)
}

// degraded builds a fingerprint from signals that cannot realistically fail.
func (f *Fingerprinter) degraded() string {
	host, _ := os.Hostname()

	var username string
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	return formatFingerprint([]string{host, username, runtime.GOOS + "/" + runtime.GOARCH})
}

// formatFingerprint digests the pipe-joined signals and renders the first 32
// hex characters of the SHA-256 sum as an uppercase 8-4-4-4-12 group.
func formatFingerprint(signals []string) string {
	sum := sha256.Sum256([]byte(strings.Join(signals, "|")))
	h := strings.ToUpper(hex.EncodeToString(sum[:]))
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32]
}

func appendNonEmpty(parts []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return parts
}
