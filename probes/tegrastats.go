package probes

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tegrastats reads the board input power (VDD_IN rail) by invoking the
// Jetson tegrastats utility once and parsing its first output line.
//
// tegrastats keeps streaming until killed, so the command runs under the
// caller's context; the sampler's per-probe timeout guarantees a hung or
// missing tool can never block a tick for long.
type Tegrastats struct {
	// Command overrides the executable name, "tegrastats" by default.
	Command string
}

// Name implements Probe.
func (t Tegrastats) Name() string { return "power_w" }

// Sample implements Probe.
func (t Tegrastats) Sample(ctx context.Context) (float64, error) {
	command := t.Command
	if command == "" {
		command = "tegrastats"
	}

	cmd := exec.CommandContext(ctx, command, "--interval", "250")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, ErrUnavailable
	}
	if err := cmd.Start(); err != nil {
		return 0, ErrUnavailable
	}
	// Only the first report line is needed; kill the stream afterwards.
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	scanner := bufio.NewScanner(stdout)
	if !scanner.Scan() {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, ErrUnavailable
	}

	watts, err := ParseTegrastatsPower(scanner.Text())
	if err != nil {
		return 0, ErrUnavailable
	}
	return watts, nil
}

// ParseTegrastatsPower extracts the instantaneous VDD_IN power draw in
// watts from one tegrastats output line. Both the "3124mW/3100mW" and the
// older "5W/5W" formats are handled; the value before the slash is the
// instantaneous reading.
func ParseTegrastatsPower(line string) (float64, error) {
	fields := strings.Fields(line)
	for i, field := range fields {
		if field != "VDD_IN" || i+1 >= len(fields) {
			continue
		}

		value := fields[i+1]
		if slash := strings.IndexByte(value, '/'); slash >= 0 {
			value = value[:slash]
		}

		switch {
		case strings.HasSuffix(value, "mW"):
			mw, err := strconv.ParseFloat(strings.TrimSuffix(value, "mW"), 64)
			if err != nil {
				return 0, errors.Wrapf(err, "parse VDD_IN %q", value)
			}
			return mw / 1000.0, nil
		case strings.HasSuffix(value, "W"):
			w, err := strconv.ParseFloat(strings.TrimSuffix(value, "W"), 64)
			if err != nil {
				return 0, errors.Wrapf(err, "parse VDD_IN %q", value)
			}
			return w, nil
		}
	}
	return 0, errors.New("no VDD_IN field in tegrastats output")
}
