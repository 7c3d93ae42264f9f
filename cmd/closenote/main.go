package main

import (
	"os"
	"strings"

	"closenote/internal/cli"
	"closenote/internal/model"
)

func rewriteDirectUnitArgs(argv []string) []string {
	// Convenience: `closenote <unit>` works like `closenote unit show <unit>`, and
	// `closenote <unit> --priority high` like `closenote unit set <unit> --priority high`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
	// before parsing. Persistent flags may come first, so look for the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":      true,
		"--backend":  true,
		"--format":   true,
		"--log-file": true,
	}

	insert := func(i int) []string {
		sub := "show"
		if i+1 < len(argv) {
			sub = "set"
		}
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "unit", sub)
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if _, ok := model.LookupKey(argv[i+1]); ok {
					return insert(i + 1)
				}
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if _, ok := model.LookupKey(a); ok {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectUnitArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
