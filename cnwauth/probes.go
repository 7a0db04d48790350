package cnwauth

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// oemPlaceholder is reported by boards whose vendor never programmed a
// serial. It identifies nothing and must be rejected.
const oemPlaceholder = "To be filled by O.E.M."

// probeSet groups the individual signal collectors so tests can substitute
// deterministic fakes.
type probeSet struct {
	platform      func(ctx context.Context) (name, version string)
	hostname      func() (string, error)
	username      func() (string, error)
	mac           func(ctx context.Context) (string, error)
	cpu           func(ctx context.Context) (string, error)
	disk          func(ctx context.Context) (string, error)
	platformExtra func(ctx context.Context) (string, error)
}

func defaultProbes() probeSet {
	return probeSet{
		platform:      probePlatform,
		hostname:      os.Hostname,
		username:      probeUsername,
		mac:           probeMAC,
		cpu:           probeCPU,
		disk:          probeDisk,
		platformExtra: probePlatformExtra,
	}
}

// probePlatform returns the OS platform name and version. It always returns
// a usable name, falling back to runtime.GOOS.
func probePlatform(ctx context.Context) (string, string) {
	info, err := host.InfoWithContext(ctx)
	if err != nil || info.Platform == "" {
		return runtime.GOOS, ""
	}
	return info.Platform, info.PlatformVersion
}

// probeUsername returns the login name of the current user.
func probeUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	return u.Username, nil
}

// probeMAC returns the lexicographically smallest MAC address among up,
// non-loopback interfaces. Sorting makes the choice deterministic on
// machines with several interfaces.
func probeMAC(_ context.Context) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}

	var macs []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if mac := iface.HardwareAddr.String(); mac != "" {
			macs = append(macs, mac)
		}
	}
	if len(macs) == 0 {
		return "", fmt.Errorf("no active non-loopback interface with a MAC address")
	}
	sort.Strings(macs)
	return macs[0], nil
}

// probeCPU returns a CPU identity string. gopsutil reads the platform
// source directly: WMI on Windows, sysctl on macOS, /proc/cpuinfo on Linux.
func probeCPU(ctx context.Context) (string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("cpu info: empty result")
	}

	first := infos[0]
	id := strings.TrimSpace(strings.Join([]string{first.VendorID, first.ModelName, first.PhysicalID}, " "))
	if id == "" {
		return "", fmt.Errorf("cpu info: no identifying fields")
	}
	return id, nil
}

// probeDisk returns a serial or volume identifier for the system disk.
func probeDisk(ctx context.Context) (string, error) {
	switch runtime.GOOS {
	case "windows":
		out, err := cmdOutput(ctx, "wmic", "diskdrive", "get", "SerialNumber", "/value")
		if err != nil {
			return "", err
		}
		return parseWmicValue(out, "SerialNumber")
	case "darwin":
		out, err := cmdOutput(ctx, "diskutil", "info", "/")
		if err != nil {
			return "", err
		}
		return parseLabeledValue(out, "Volume UUID")
	default:
		out, err := cmdOutput(ctx, "blkid", "-s", "UUID", "-o", "value", "/")
		if err != nil {
			return "", err
		}
		if out == "" {
			return "", fmt.Errorf("blkid: empty output")
		}
		return out, nil
	}
}

// probePlatformExtra returns the platform-exclusive signal: board serial on
// Windows, hardware UUID on macOS, machine-id on Linux.
func probePlatformExtra(ctx context.Context) (string, error) {
	switch runtime.GOOS {
	case "windows":
		out, err := cmdOutput(ctx, "wmic", "baseboard", "get", "SerialNumber", "/value")
		if err != nil {
			return "", err
		}
		serial, err := parseWmicValue(out, "SerialNumber")
		if err != nil {
			return "", err
		}
		if strings.EqualFold(serial, oemPlaceholder) {
			return "", fmt.Errorf("board serial is the OEM placeholder")
		}
		return serial, nil
	case "darwin":
		out, err := cmdOutput(ctx, "system_profiler", "SPHardwareDataType")
		if err != nil {
			return "", err
		}
		return parseLabeledValue(out, "Hardware UUID")
	default:
		return readMachineID()
	}
}

// readMachineID reads the systemd machine-id, falling back to the dbus copy.
func readMachineID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no machine-id file readable")
}

// cmdOutput runs a command and returns its trimmed stdout.
func cmdOutput(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// parseWmicValue extracts `key=value` output produced by wmic /value queries.
func parseWmicValue(out, key string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(line), strings.ToLower(key)+"=") {
			continue
		}
		if v := strings.TrimSpace(line[len(key)+1:]); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no %s in wmic output", key)
}

// parseLabeledValue extracts `Label: value` lines as printed by diskutil and
// system_profiler.
func parseLabeledValue(out, label string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		before, after, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(before), label) {
			continue
		}
		if v := strings.TrimSpace(after); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no %q in output", label)
}
