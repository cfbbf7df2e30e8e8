package catalog

import "testing"

func TestModuleFor_Known(t *testing.T) {
	cases := []struct {
		family, measure, want string
	}{
		{"CPU", "idle", "cpu-stat"},
		{"CPU", "user", "cpu-stat"},
		{"System", "la1", "cpu-la"},
		{"System", "csw", "cpu-stat"},
		{"Memory", "free", "mem"},
		{"Disk", "read", "disk"},
		{"Net", "recv", "net"},
		{"Net", "tx", "net-tx-rx"},
		{"Net", "retransmit", "net-retrans"},
		{"Net", "estab", "net-tcp"},
	}
	for _, tc := range cases {
		if got := ModuleFor(tc.family, tc.measure); got != tc.want {
			t.Errorf("ModuleFor(%q, %q) = %q, want %q", tc.family, tc.measure, got, tc.want)
		}
	}
}

func TestModuleFor_Unknown(t *testing.T) {
	if got := ModuleFor("CPU", "bogus"); got != "" {
		t.Errorf("expected empty module for unknown measurement, got %q", got)
	}
	if got := ModuleFor("Bogus", "idle"); got != "" {
		t.Errorf("expected empty module for unknown family, got %q", got)
	}
}

func TestDefaultMeasurementsFor(t *testing.T) {
	cases := map[string][]string{
		"System": {"csw", "int"},
		"CPU":    {"user", "system", "iowait"},
		"Memory": {"free", "used"},
		"Disk":   {"read", "write"},
		"Net":    {"recv", "send"},
	}
	for family, want := range cases {
		got := DefaultMeasurementsFor(family)
		if len(got) != len(want) {
			t.Fatalf("%s: expected %v, got %v", family, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: expected %v, got %v", family, want, got)
			}
		}
	}
}

func TestDefaultMeasurementsFor_ReturnsCopy(t *testing.T) {
	got := DefaultMeasurementsFor("CPU")
	got[0] = "mutated"
	if DefaultMeasurementsFor("CPU")[0] == "mutated" {
		t.Error("DefaultMeasurementsFor must return a copy, not the internal slice")
	}
}

func TestIsFamily(t *testing.T) {
	for _, f := range []string{"CPU", "System", "Memory", "Disk", "Net"} {
		if !IsFamily(f) {
			t.Errorf("expected %q to be a recognized family", f)
		}
	}
	if IsFamily("Custom") {
		t.Error("Custom is not a metric family")
	}
	if IsFamily("Bogus") {
		t.Error("Bogus is not a recognized family")
	}
}

func TestDefaultFamilies(t *testing.T) {
	want := []string{"CPU", "Memory", "Disk", "Net"}
	if len(DefaultFamilies) != len(want) {
		t.Fatalf("expected %v, got %v", want, DefaultFamilies)
	}
	for i := range want {
		if DefaultFamilies[i] != want[i] {
			t.Errorf("expected %v, got %v", want, DefaultFamilies)
		}
	}
}
