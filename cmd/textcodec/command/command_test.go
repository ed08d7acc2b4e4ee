package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/textcodec/errors"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	ctx := context.Background()

	a := &app{}
	root := a.root()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err = root.ExecuteContext(ctx)
	a.teardown(ctx)
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textcodec.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"hex", "", []string{"encode", "--hex", "€"}, "E2 82 AC\n"},
		{"raw", "", []string{"encode", "héllo"}, "héllo"},
		{"stdin", "ok", []string{"encode", "--hex"}, "6F 6B\n"},
		{"utf16le lone surrogate", "\x00\xD8a\x00", []string{"encode", "--utf16le", "--hex"}, "EF BF BD 61\n"},
		{"sandbox", "", []string{"--sandbox", "encode", "--hex", "😀"}, "F0 9F 98 80\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"utf16le with argument", "", []string{"encode", "--utf16le", "x"}},
		{"odd utf16le input", "abc", []string{"encode", "--utf16le"}},
		{"too many args", "", []string{"encode", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.stdin, tt.args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	const text = "héllo, 世界 😀"

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"whole", text, []string{"decode"}, text},
		{"byte at a time", text, []string{"decode", "--chunk", "1"}, text},
		{"local", text, []string{"decode", "--local", "--chunk", "2"}, text},
		{"sandbox", text, []string{"--sandbox", "decode", "--chunk", "3"}, text},
		{"empty", "", []string{"decode"}, ""},
		{"hex", "E2 82 AC\n41", []string{"decode", "--hex"}, "€A"},
		{"truncated", "E2 82", []string{"decode", "--hex", "--chunk", "1"}, "\uFFFD"},
		{"overlong", "C0 80", []string{"decode", "--hex"}, "\uFFFD\uFFFD"},
		{"utf16le out", "E2 82 AC", []string{"decode", "--hex", "--utf16le"}, "\xAC\x20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("a\xFFb"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, _, err := execute(t, "", "decode", "--chunk", "2", path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a\uFFFDb" {
		t.Errorf("decode = %q", got)
	}

	if _, _, err := execute(t, "", "decode", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"zero chunk", "x", []string{"decode", "--chunk", "0"}},
		{"bad hex", "ZZ", []string{"decode", "--hex"}},
		{"odd hex", "E2 8", []string{"decode", "--hex"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.stdin, tt.args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestOps(t *testing.T) {
	got, _, err := execute(t, "", "ops")
	if err != nil {
		t.Fatal(err)
	}

	var sigs []string
	for _, line := range strings.Split(strings.TrimSpace(got), "\n") {
		if !strings.HasPrefix(line, " ") {
			sigs = append(sigs, line)
		}
	}
	want := []string{
		"decode: func(bytes: list<u8>) -> list<u16>",
		"decoder-close: func(handle: u32)",
		"decoder-decode: func(handle: u32, end-of-stream: bool, chunk: list<u8>) -> list<u16>",
		"decoder-open: func() -> u32",
		"encode: func(text: list<u16>) -> list<u8>",
	}
	if diff := cmp.Diff(want, sigs); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
}

func TestConfigCommand(t *testing.T) {
	path := writeConfig(t, "[sandbox]\nmodule_name = \"worker\"\n")

	got, _, err := execute(t, "", "--config", path, "--log-level", "warn", "config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[bridge]", `module_name = "worker"`, `level = "warn"`} {
		if !strings.Contains(got, want) {
			t.Errorf("config output missing %q:\n%s", want, got)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"bad log level", func(*testing.T) []string {
			return []string{"--log-level", "loud", "config"}
		}},
		{"unknown key", func(t *testing.T) []string {
			return []string{"--config", writeConfig(t, "colour = true\n"), "config"}
		}},
		{"invalid toml", func(t *testing.T) []string {
			return []string{"--config", writeConfig(t, "[bridge\n"), "config"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args(t)...)
			if kind, _ := errors.KindOf(err); kind != errors.KindInvalidInput {
				t.Fatalf("kind = %v, want %v (%v)", kind, errors.KindInvalidInput, err)
			}
		})
	}
}

func TestPayloadLimitFromConfig(t *testing.T) {
	path := writeConfig(t, "[bridge]\nmax_payload_bytes = 8\n")

	for _, args := range [][]string{
		{"--config", path, "encode", "--hex", "hello world"},
		{"--config", path, "--sandbox", "encode", "--hex", "hello world"},
	} {
		_, _, err := execute(t, "", args...)
		if kind, _ := errors.KindOf(err); kind != errors.KindPayloadTooLarge {
			t.Errorf("%v: kind = %v, want %v (%v)", args, kind, errors.KindPayloadTooLarge, err)
		}
	}
}

func TestMetricsFlag(t *testing.T) {
	_, stderr, err := execute(t, "", "--metrics", "encode", "--hex", "a")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`textcodec_bridge_calls_total{op="encode",status="200"} 1`,
		"textcodec_open_decoders 0",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("metrics missing %q:\n%s", want, stderr)
		}
	}
}

func TestRootHelp(t *testing.T) {
	got, _, err := execute(t, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"encode", "decode", "ops", "config", "interactive"} {
		if !strings.Contains(got, sub) {
			t.Errorf("help does not mention %q", sub)
		}
	}
}
