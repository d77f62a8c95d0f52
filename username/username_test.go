package username

import (
	"testing"
	"testing/quick"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Jacob Young", "Jacob Young"},
		{"pronouns-batch", "Jacob Young (he/him) (S2'16)", "Jacob Young"},
		{"batch-pronouns", "Jacob Young (S2'16) (he/him)", "Jacob Young"},
		{"pronouns", "Jacob Young (they/them)", "Jacob Young"},
		{"single-pronoun", "Jacob Young (he)", "Jacob Young"},
		{"many-slashes", "Jacob Young (she/they/xe)", "Jacob Young"},
		{"batch", "Jacob Young (F2'23)", "Jacob Young"},
		{"batch-no-digit", "Jacob Young (W'19)", "Jacob Young"},
		{"batch-sp", "Jacob Young (SP1'20)", "Jacob Young"},
		{"batch-Sp", "Jacob Young (Sp'20)", "Jacob Young"},
		{"batch-mini", "Jacob Young (m3'24)", "Jacob Young"},
		{"batch-curly", "Jacob Young (F2’23)", "Jacob Young"},
		{"nicknames", "Jacob (Jake) Young (Youngie)", "Jacob (Jake) Young (Youngie)"},
		{"nickname-then-decorations", "Jacob (Jake) Young (he/him) (S2'16)", "Jacob (Jake) Young"},
		{"nickname-last", "Jacob Young (he/him) (Jake)", "Jacob Young (he/him) (Jake)"},
		{"bad-season", "Jacob Young (X2'16)", "Jacob Young (X2'16)"},
		{"three-digit-year", "Jacob Young (F2'123)", "Jacob Young (F2'123)"},
		{"capital-pronoun", "Jacob Young (He/Him)", "Jacob Young (He/Him)"},
		{"spaces", "  Jacob Young   (he/him)  ", "Jacob Young"},
		{"no-space-before", "Jacob Young(he/him)", "Jacob Young"},
		{"unicode", "Zoë Ångström (she/her) (W1'24)", "Zoë Ångström"},
		{"decomposed", "Zoe\u0308 (she/her)", "Zo\u00eb"},
		{"cjk", "山田 太郎 (he/him)", "山田 太郎"},
		{"empty", "", ""},
		{"only-decoration", "(he/him)", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Normalize(c.in)
			if got != c.want {
				t.Errorf("wrong name from %q: want %q, got %q", c.in, c.want, got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	f := func(s string) bool {
		n := Normalize(s)
		return Normalize(n) == n
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
	fixed := []string{
		"Jacob Young (he/him) (they/them)",
		"Jacob Young (S2'16) (F1'17) (he)",
		"(he) (she)",
		"a (b) (c/d)",
	}
	for _, s := range fixed {
		n := Normalize(s)
		if m := Normalize(n); m != n {
			t.Errorf("not idempotent on %q: %q then %q", s, n, m)
		}
	}
}

func TestIsDecoration(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"(he/him)", true},
		{"(S2'16)", true},
		{"(Jake)", false},
		{"he/him", false},
		{"(S2'1)", false},
	}
	for _, c := range cases {
		if got := IsDecoration(c.in); got != c.want {
			t.Errorf("wrong decoration for %q: want %t, got %t", c.in, c.want, got)
		}
	}
}
