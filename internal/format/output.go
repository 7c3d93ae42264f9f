// Package format writes CLI results as JSON, EDN or YAML.
package format

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	JSON = "json"
	EDN  = "edn"
	YAML = "yaml"
)

// Names lists the accepted --format values.
func Names() []string { return []string{JSON, EDN, YAML} }

// Parse validates a --format value. Empty means JSON.
func Parse(s string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return JSON, nil
	case JSON, EDN, YAML:
		return v, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want %s)", s, strings.Join(Names(), "|"))
	}
}

func Write(w io.Writer, v any, format string, pretty bool) error {
	f, err := Parse(format)
	if err != nil {
		return err
	}
	switch f {
	case EDN:
		return WriteEDN(w, v, pretty)
	case YAML:
		return WriteYAML(w, v)
	default:
		return WriteJSON(w, v, pretty)
	}
}

// WriteJSON writes one JSON document followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// generic converts v to maps, slices and scalars using its json tags, so the
// EDN and YAML writers print the same field names as JSON.
func generic(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}
