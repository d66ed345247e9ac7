package wizard

import (
	"testing"

	"github.com/kingrea/briefing-studio/internal/briefing"
)

func TestParseStep(t *testing.T) {
	if step, ok := ParseStep("2"); !ok || step != 2 {
		t.Fatalf(`ParseStep("2") = %d, %v`, step, ok)
	}
	for _, bad := range []string{"abc", "0", "7", "", " ", "1e0"} {
		if _, ok := ParseStep(bad); ok {
			t.Fatalf("ParseStep(%q) accepted", bad)
		}
	}
}

func TestStepSegment(t *testing.T) {
	cases := []struct {
		path    string
		segment string
		ok      bool
	}{
		{"/dashboard/new", "", true},
		{"/dashboard/new/", "", true},
		{"/dashboard/new/3", "3", true},
		{"/dashboard/new/abc", "abc", true},
		{"/dashboard", "", false},
		{"/dashboard/new/1/extra", "", false},
		{"/dashboard/newer", "", false},
	}
	for _, tc := range cases {
		segment, ok := StepSegment(tc.path)
		if segment != tc.segment || ok != tc.ok {
			t.Fatalf("StepSegment(%q) = %q, %v; want %q, %v", tc.path, segment, ok, tc.segment, tc.ok)
		}
	}
}

func TestPath(t *testing.T) {
	if got := Path(briefing.LastStep); got != "/dashboard/new/3" {
		t.Fatalf("Path = %s", got)
	}
}
