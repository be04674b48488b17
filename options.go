package mic

import (
	"errors"
	"fmt"
)

const (
	ENDIAN_LITTLE    = "little"
	ENDIAN_BIG       = "big"
	SIGNED_INTEGER   = "signed-integer"
	UNSIGNED_INTEGER = "unsigned-integer"
	TYPE_RAW         = "raw"
	TYPE_WAV         = "wav"
)

// ErrInvalidOptions is wrapped by every error returned from Options.Validate
var ErrInvalidOptions = errors.New("invalid options")

// Options is the capture configuration, snapshotted when a Microphone is created
type Options struct {
	// Endian is the encoded byte order: "little" or "big"
	Endian string `yaml:"endian"`

	// BitWidth is the encoded sample size: 8, 16 or 24
	BitWidth int `yaml:"bitwidth"`

	// Encoding is "signed-integer" or "unsigned-integer"
	Encoding string `yaml:"encoding"`

	// Rate is the sample rate in Hz
	Rate int `yaml:"rate"`

	// Channels is the number of channels: 1 = mono, 2 = stereo
	Channels int `yaml:"channels"`

	// Device is the capture device. Empty selects the platform default
	// (plughw:1,0 for arecord, "default" for sox).
	Device string `yaml:"device"`

	// ExitOnSilence is the number of consecutive silent chunks after which
	// EventSilence is raised (0 disables silence detection)
	ExitOnSilence int `yaml:"exit_on_silence"`

	// FileType is the container written by the recorder, e.g. "raw" or "wav"
	FileType string `yaml:"file_type"`

	// Debug enables diagnostic logging and pipes the recorder's stderr into it
	Debug bool `yaml:"debug"`

	// Strict makes a duplicate Start return ErrAlreadyStarted instead of
	// being ignored
	Strict bool `yaml:"strict"`

	// BufferSize is the read size used when pumping the recorder's stdout
	// (defaults to 32KB)
	BufferSize int `yaml:"buffer_size"`
}

// DefaultOptions returns Options with sensible defaults
func DefaultOptions() Options {
	return Options{
		Endian:        ENDIAN_LITTLE,
		BitWidth:      16,
		Encoding:      SIGNED_INTEGER,
		Rate:          16000,
		Channels:      1,
		ExitOnSilence: 0,
		FileType:      TYPE_RAW,
		Debug:         false,
		Strict:        false,
		BufferSize:    32 * 1024, // 32KB
	}
}

// withDefaults fills zero values with their defaults
func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.Endian == "" {
		o.Endian = d.Endian
	}
	if o.BitWidth == 0 {
		o.BitWidth = d.BitWidth
	}
	if o.Encoding == "" {
		o.Encoding = d.Encoding
	}
	if o.Rate == 0 {
		o.Rate = d.Rate
	}
	if o.Channels == 0 {
		o.Channels = d.Channels
	}
	if o.FileType == "" {
		o.FileType = d.FileType
	}
	if o.BufferSize == 0 {
		o.BufferSize = d.BufferSize
	}

	return o
}

// Validate checks the options and returns all problems found
func (o *Options) Validate() error {
	var errs []error

	if o.Endian != ENDIAN_LITTLE && o.Endian != ENDIAN_BIG {
		errs = append(errs, fmt.Errorf("endian must be 'little' or 'big', got %q", o.Endian))
	}

	switch o.BitWidth {
	case 8, 16, 24:
	default:
		errs = append(errs, fmt.Errorf("bitwidth must be 8, 16 or 24, got %d", o.BitWidth))
	}

	if o.Encoding != SIGNED_INTEGER && o.Encoding != UNSIGNED_INTEGER {
		errs = append(errs, fmt.Errorf("encoding must be %q or %q, got %q", SIGNED_INTEGER, UNSIGNED_INTEGER, o.Encoding))
	}

	if o.Rate <= 0 {
		errs = append(errs, fmt.Errorf("rate must be positive, got %d", o.Rate))
	}

	if o.Channels <= 0 {
		errs = append(errs, fmt.Errorf("channels must be positive, got %d", o.Channels))
	}

	if o.ExitOnSilence < 0 {
		errs = append(errs, fmt.Errorf("exit_on_silence must not be negative, got %d", o.ExitOnSilence))
	}

	if o.FileType == "" {
		errs = append(errs, errors.New("file_type is required"))
	}

	if o.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer_size must be positive, got %d", o.BufferSize))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
}
