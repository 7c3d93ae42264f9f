package format

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes a single YAML document. Keys come out sorted.
func WriteYAML(w io.Writer, v any) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return enc.Close()
}
