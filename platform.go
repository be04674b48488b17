package mic

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrUnsupportedPlatform is returned by a Resolver that has no recorder for a GOOS
var ErrUnsupportedPlatform = errors.New("no audio recorder for platform")

// Resolver returns the recorder command and its arguments for opts on goos
type Resolver func(opts Options, goos string) (command string, args []string, err error)

// recorder describes how one platform records audio
type recorder struct {
	Command       string
	DefaultDevice string
	BuildArgs     func(opts Options, device string) []string
}

// recorders is keyed by GOOS; "" is the fallback for unlisted systems
var recorders = map[string]recorder{
	"windows": {
		Command:       "sox",
		DefaultDevice: "default",
		BuildArgs:     buildSoxArgs,
	},
	"darwin": {
		Command:       "rec",
		DefaultDevice: "default",
		BuildArgs:     buildRecArgs,
	},
	"": {
		Command:       "arecord",
		DefaultDevice: "plughw:1,0",
		BuildArgs:     buildArecordArgs,
	},
}

// DefaultResolver maps windows to sox, darwin to rec and every other system to arecord
func DefaultResolver(opts Options, goos string) (string, []string, error) {
	r, ok := recorders[goos]
	if !ok {
		r, ok = recorders[""]
	}
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}

	device := opts.Device
	if device == "" {
		device = r.DefaultDevice
	}

	return r.Command, r.BuildArgs(opts, device), nil
}

// DefaultDevice returns the device used on goos when Options.Device is empty
func DefaultDevice(goos string) string {
	if r, ok := recorders[goos]; ok {
		return r.DefaultDevice
	}
	return recorders[""].DefaultDevice
}

// buildSoxFormatArgs returns the sox/rec flags shared by windows and darwin
func buildSoxFormatArgs(opts Options) []string {
	return []string{
		"-b", strconv.Itoa(opts.BitWidth),
		"--endian", opts.Endian,
		"-c", strconv.Itoa(opts.Channels),
		"-r", strconv.Itoa(opts.Rate),
		"-e", opts.Encoding,
	}
}

// buildSoxArgs records from the waveaudio driver and writes sox's native pipe format
func buildSoxArgs(opts Options, device string) []string {
	args := buildSoxFormatArgs(opts)
	return append(args, "-t", "waveaudio", device, "-p")
}

// buildRecArgs records from the default input and writes to stdout
func buildRecArgs(opts Options, _ string) []string {
	args := buildSoxFormatArgs(opts)
	return append(args, "-t", opts.FileType, "-")
}

// buildArecordArgs records from an ALSA device and writes to stdout
func buildArecordArgs(opts Options, device string) []string {
	return []string{
		"-t", opts.FileType,
		"-c", strconv.Itoa(opts.Channels),
		"-r", strconv.Itoa(opts.Rate),
		"-f", arecordFormat(opts),
		"-D", device,
	}
}

// arecordFormat builds an arecord sample format such as S16_LE
func arecordFormat(opts Options) string {
	encoding := "S"
	if opts.Encoding == UNSIGNED_INTEGER {
		encoding = "U"
	}

	endian := "LE"
	if opts.Endian == ENDIAN_BIG {
		endian = "BE"
	}

	return fmt.Sprintf("%s%d_%s", encoding, opts.BitWidth, endian)
}

// CheckCommandInstalled verifies that a recorder command is installed and accessible
func CheckCommandInstalled(command string) error {
	if command == "" {
		command = "arecord"
	}

	cmd := exec.Command(command, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s not found or not executable: %w", command, err)
	}

	return nil
}
