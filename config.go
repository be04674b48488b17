package mic

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptions reads capture options from the YAML file at path.
// Keys missing from the file keep their DefaultOptions value.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, fmt.Errorf("open options %q: %w", path, err)
	}
	defer f.Close()

	opts, err := LoadOptionsFromReader(f)
	if err != nil {
		return Options{}, fmt.Errorf("load options %q: %w", path, err)
	}
	return opts, nil
}

// LoadOptionsFromReader decodes YAML options from r over DefaultOptions and
// validates the result. Unknown keys are rejected.
func LoadOptionsFromReader(r io.Reader) (Options, error) {
	opts := DefaultOptions()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("decode yaml: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
