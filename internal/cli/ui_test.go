package cli

import (
	"strings"
	"testing"
)

func TestKeyValue(t *testing.T) {
	out := keyValue("Expression", "0 1 H 2 V")
	if !strings.Contains(out, "Expression") || !strings.Contains(out, "0 1 H 2 V") {
		t.Fatalf("keyValue() = %q", out)
	}
	if i := strings.Index(out, "0 1 H 2 V"); i < 14 {
		t.Errorf("value starts at column %d, want keys padded to 14", i)
	}
}
