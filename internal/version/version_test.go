package version

import "testing"

func TestResolveLinkerValuesWin(t *testing.T) {
	prevV, prevC := Version, Commit
	t.Cleanup(func() { Version, Commit = prevV, prevC })

	Version = "v1.2.3"
	Commit = "0123456789abcdef"
	info := Resolve()
	if info.Version != "v1.2.3" {
		t.Fatalf("unexpected version %q", info.Version)
	}
	if got := String(); got != "v1.2.3 (0123456789ab)" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	prev := Version
	t.Cleanup(func() { Version = prev })

	Version = ""
	if Resolve().Version == "" {
		t.Fatal("expected a fallback version")
	}
}
