package version

import "testing"

func TestParse(t *testing.T) {
	v := Parse("1.2.3-4")
	if v.Upstream != "1.2.3" || v.Revision != "4" {
		t.Fatalf("Parse(1.2.3-4) = %+v", v)
	}

	v = Parse("1.2.3")
	if v.Upstream != "1.2.3" || v.Revision != "0" {
		t.Fatalf("Parse(1.2.3) = %+v", v)
	}
}

func TestCompareBasic(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.0-1", "1.0.0-1", 0},
		{"1.0.0-1", "1.0.0-2", -1},
		{"1.0.1-1", "1.0.0-9", 1},
		{"0.9.0-1", "1.0.0-1", -1},
		{"1.0~beta-1", "1.0-1", -1}, // '~' sorts lower than anything
		{"2.0-1", "10.0-1", -1},     // numeric run, not lexicographic
	}

	for _, c := range cases {
		got := Compare(Parse(c.a), Parse(c.b))
		if got != c.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareSymmetric(t *testing.T) {
	a, b := Parse("1.2.0-1"), Parse("1.10.0-1")
	if Compare(a, b) != -Compare(b, a) {
		t.Fatalf("Compare not antisymmetric for %v, %v", a, b)
	}
}
