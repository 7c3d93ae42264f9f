package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteDirectUnitArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"closenote"},
			want: []string{"closenote"},
		},
		{
			name: "bare unit shows it",
			in:   []string{"closenote", "charlie"},
			want: []string{"closenote", "unit", "show", "charlie"},
		},
		{
			name: "unit with flags sets it",
			in:   []string{"closenote", "Charlie", "--priority", "high"},
			want: []string{"closenote", "unit", "set", "Charlie", "--priority", "high"},
		},
		{
			name: "unit after value flag",
			in:   []string{"closenote", "--dir", "./tmp", "shipping"},
			want: []string{"closenote", "--dir", "./tmp", "unit", "show", "shipping"},
		},
		{
			name: "unit after equals flag",
			in:   []string{"closenote", "--dir=./tmp", "alpha"},
			want: []string{"closenote", "--dir=./tmp", "unit", "show", "alpha"},
		},
		{
			name: "unit after bool flag",
			in:   []string{"closenote", "--pretty", "alpha"},
			want: []string{"closenote", "--pretty", "unit", "show", "alpha"},
		},
		{
			name: "unit after double dash",
			in:   []string{"closenote", "--", "alpha"},
			want: []string{"closenote", "--", "unit", "show", "alpha"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"closenote", "unit", "show", "alpha"},
			want: []string{"closenote", "unit", "show", "alpha"},
		},
		{
			name: "unknown token not rewritten",
			in:   []string{"closenote", "zulu"},
			want: []string{"closenote", "zulu"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectUnitArgs(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("rewriteDirectUnitArgs (-want +got):\n%s", diff)
			}
		})
	}
}
