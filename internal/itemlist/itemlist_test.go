package itemlist

import (
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "whitespace only", in: "  \n , \n\t", want: []string{}},
		{name: "commas", in: "RAM installed, Windows updated", want: []string{"RAM installed", "Windows updated"}},
		{name: "newlines and commas", in: "a\nb, c\n\n,d", want: []string{"a", "b", "c", "d"}},
		{name: "case-insensitive dedupe keeps first casing", in: "Ram, ram, RAM", want: []string{"Ram"}},
		{name: "dedupe keeps first position", in: "b, a, B, c, A", want: []string{"b", "a", "c"}},
		{name: "trims tokens", in: "  cleaning motherboard  \n  AFK setup", want: []string{"cleaning motherboard", "AFK setup"}},
		{name: "crlf", in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "distinct invalid bytes stay distinct", in: "\xff,\xfe", want: []string{"\xff", "\xfe"}},
		{name: "invalid bytes still fold case", in: "A\xff, a\xff, a\xfe", want: []string{"A\xff", "a\xfe"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Normalize(%q) = %#v; want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestHasItems(t *testing.T) {
	t.Parallel()

	if HasItems(" ,\n, ") {
		t.Fatalf("expected delimiter-only text to have no items")
	}
	if !HasItems("x") {
		t.Fatalf("expected single item to count")
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	if got := Join([]string{"a", "b"}); got != "a, b" {
		t.Fatalf("Join = %q", got)
	}
	if got := Join(nil); got != "" {
		t.Fatalf("Join(nil) = %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	alphabet := rapid.SampledFrom([]string{"a", "A", "b", "B", "ram", "RAM", " ", "\t", "\n", ",", "\r\n", "é", "É"})
	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(alphabet, 0, 40).Draw(t, "parts")
		in := strings.Join(parts, "")

		once := Normalize(in)
		twice := Normalize(strings.Join(once, "\n"))
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent for %q: %#v vs %#v", in, once, twice)
		}
		for _, it := range once {
			if it == "" || it != strings.TrimSpace(it) || strings.ContainsAny(it, ",\n") {
				t.Fatalf("unexpected token %q from %q", it, in)
			}
		}
	})
}

func TestNormalize_ArbitraryText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		once := Normalize(in)
		if got := Normalize(strings.Join(once, ",")); !reflect.DeepEqual(got, once) {
			t.Fatalf("comma rejoin changed list for %q: %#v vs %#v", in, once, got)
		}
	})
}
