package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestModuleByName(t *testing.T) {
	for _, name := range []string{"emu", "cpu", "bus", "ppu", "cart", "hwio"} {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("module %q not found", name)
		}
		if mod.String() != name {
			t.Errorf("module %q String() = %q", name, mod.String())
		}
	}

	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("<error> is not a module")
	}
	if _, ok := ModuleByName("apu"); ok {
		t.Errorf("apu is not a module")
	}
}

func TestNewModule(t *testing.T) {
	mod := NewModule("test")

	got, ok := ModuleByName("test")
	if !ok || got != mod {
		t.Fatalf("ModuleByName(test) = %v, %t", got, ok)
	}
	found := false
	for _, name := range ModuleNames() {
		if name == "test" {
			found = true
		}
	}
	if !found {
		t.Errorf("ModuleNames() = %v, missing test", ModuleNames())
	}
}

func TestEnabledLevels(t *testing.T) {
	t.Cleanup(func() { DisableDebugModules(ModuleMaskAll) })

	if ModPPU.Enabled(DebugLevel) || ModPPU.Enabled(InfoLevel) {
		t.Errorf("debug and info should be disabled by default")
	}
	if !ModPPU.Enabled(WarnLevel) || !ModPPU.Enabled(ErrorLevel) {
		t.Errorf("warn and error should always be enabled")
	}
	if ModPPU.DebugZ("msg") != nil {
		t.Errorf("disabled module should return a nil entry")
	}

	EnableDebugModules(ModPPU.Mask())
	if !ModPPU.Enabled(DebugLevel) {
		t.Errorf("debug should be enabled for ppu")
	}
	if ModCPU.Enabled(DebugLevel) {
		t.Errorf("debug should be disabled for cpu")
	}
}

func TestEntryZ(t *testing.T) {
	buf := captureOutput(t)
	EnableDebugModules(ModPPU.Mask())
	t.Cleanup(func() { DisableDebugModules(ModuleMaskAll) })

	ModPPU.DebugZ("vram").
		Hex16("addr", 0x2305).
		Hex8("val", 0x0F).
		Bool("latch", true).
		Int("dot", -3).
		Uint("frame", 12).
		Error("err", errors.New("boom")).
		End()

	out := buf.String()
	for _, want := range []string{
		"level=debug", "msg=vram", "_mod=ppu",
		"addr=2305", "val=0f", "latch=true", "dot=-3", "frame=12", "err=boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q doesn't contain %q", out, want)
		}
	}
}

func TestEntryZDisabled(t *testing.T) {
	buf := captureOutput(t)

	// nil entries are no-ops.
	ModCPU.DebugZ("hidden").Hex8("a", 1).String("s", "x").End()
	if buf.Len() != 0 {
		t.Errorf("disabled entry wrote %q", buf.String())
	}

	ModCPU.WarnZ("shown").End()
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("warn entry missing, got %q", buf.String())
	}
}
