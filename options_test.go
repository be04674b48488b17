package mic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, ENDIAN_LITTLE, opts.Endian)
	assert.Equal(t, 16, opts.BitWidth)
	assert.Equal(t, SIGNED_INTEGER, opts.Encoding)
	assert.Equal(t, 16000, opts.Rate)
	assert.Equal(t, 1, opts.Channels)
	assert.Empty(t, opts.Device)
	assert.Equal(t, 0, opts.ExitOnSilence)
	assert.Equal(t, TYPE_RAW, opts.FileType)
	assert.False(t, opts.Debug)
	assert.False(t, opts.Strict)
	assert.Equal(t, 32*1024, opts.BufferSize)
	assert.NoError(t, opts.Validate())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr string
	}{
		{name: "defaults are valid", modify: func(*Options) {}},
		{name: "big endian unsigned 8 bit", modify: func(o *Options) {
			o.Endian = ENDIAN_BIG
			o.Encoding = UNSIGNED_INTEGER
			o.BitWidth = 8
		}},
		{name: "invalid endian", modify: func(o *Options) { o.Endian = "swap" }, wantErr: "endian"},
		{name: "invalid bitwidth", modify: func(o *Options) { o.BitWidth = 32 }, wantErr: "bitwidth"},
		{name: "invalid encoding", modify: func(o *Options) { o.Encoding = "floating-point" }, wantErr: "encoding"},
		{name: "zero rate", modify: func(o *Options) { o.Rate = 0 }, wantErr: "rate"},
		{name: "negative channels", modify: func(o *Options) { o.Channels = -1 }, wantErr: "channels"},
		{name: "negative exit on silence", modify: func(o *Options) { o.ExitOnSilence = -2 }, wantErr: "exit_on_silence"},
		{name: "missing file type", modify: func(o *Options) { o.FileType = "" }, wantErr: "file_type"},
		{name: "zero buffer size", modify: func(o *Options) { o.BufferSize = 0 }, wantErr: "buffer_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)

			err := opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidOptions)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptions_ValidateReportsAllProblems(t *testing.T) {
	opts := DefaultOptions()
	opts.Endian = "middle"
	opts.Rate = -1

	err := opts.Validate()
	assert.ErrorContains(t, err, "endian")
	assert.ErrorContains(t, err, "rate")
}

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{Rate: 8000, Device: "hw:2", Debug: true}.withDefaults()

	assert.Equal(t, 8000, opts.Rate)
	assert.Equal(t, "hw:2", opts.Device)
	assert.True(t, opts.Debug)
	assert.Equal(t, ENDIAN_LITTLE, opts.Endian)
	assert.Equal(t, 16, opts.BitWidth)
	assert.Equal(t, 32*1024, opts.BufferSize)
}
