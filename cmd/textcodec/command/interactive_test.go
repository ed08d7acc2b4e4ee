package command

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/textcodec/hostcall"
	"github.com/wippyai/textcodec/hostcodec"
)

func newTestModel(t *testing.T) *interactiveModel {
	t.Helper()
	host := hostcodec.New()
	t.Cleanup(func() { _ = host.Close() })

	reg := hostcall.NewRegistry()
	if err := reg.RegisterHost(host); err != nil {
		t.Fatal(err)
	}
	return newInteractiveModel(context.Background(), reg, "registry")
}

func TestInteractive_Convert(t *testing.T) {
	tests := []struct {
		name    string
		mode    convertMode
		input   string
		want    string
		wantErr bool
	}{
		{"encode", modeEncode, "€", "E2 82 AC  (3 bytes)", false},
		{"decode", modeDecode, "F0 9F 98 80", `"😀"  (2 code units)`, false},
		{"decode ill-formed", modeDecode, "C3", "\"\uFFFD\"  (1 code units)", false},
		{"bad hex", modeDecode, "xyz", "", true},
		{"empty", modeEncode, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.setMode(tt.mode)
			m.input.SetValue(tt.input)

			msg := m.convert()()
			m.Update(msg)

			if (m.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", m.err, tt.wantErr)
			}
			if m.result != tt.want {
				t.Errorf("result = %q, want %q", m.result, tt.want)
			}
		})
	}
}

func TestInteractive_StaleResultIgnored(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("a")
	stale := m.convert()
	m.input.SetValue("ab")
	fresh := m.convert()

	m.Update(fresh())
	m.Update(stale())
	if m.result != "61 62  (2 bytes)" {
		t.Errorf("result = %q, want the newer conversion", m.result)
	}
}

func TestInteractive_Keys(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("é")})
	if cmd == nil {
		t.Fatal("typing should schedule a conversion")
	}
	if m.input.Value() != "é" {
		t.Fatalf("input = %q", m.input.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.mode != modeDecode || m.input.Value() != "" {
		t.Errorf("after tab: mode %v, input %q", m.mode, m.input.Value())
	}
	if !strings.Contains(m.View(), modeDecode.String()) {
		t.Error("view does not show the decode mode")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc did not return tea.Quit")
	}
}
