package proc

import (
	"os"
	"reflect"
	"testing"
)

func TestParsePIDLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"empty", "", nil},
		{"single", "1234\n", []int{1234}},
		{"multiple with blanks", "1234\n\n  5678  \n", []int{1234, 5678}},
		{"garbage skipped", "1234\nabc\n-5\n90\n", []int{1234, 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePIDLines(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePIDLines(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNetstatListeners(t *testing.T) {
	out := `
Active Connections

  Proto  Local Address          Foreign Address        State           PID
  TCP    0.0.0.0:8080           0.0.0.0:0              LISTENING       1234
  TCP    127.0.0.1:8080         0.0.0.0:0              LISTENING       1234
  TCP    0.0.0.0:80             0.0.0.0:0              LISTENING       4
  TCP    127.0.0.1:8080         127.0.0.1:51000        ESTABLISHED     9999
  TCP    [::]:8080              [::]:0                 LISTENING       5678
  UDP    0.0.0.0:8080           *:*                                    7777
`

	got := parseNetstatListeners(out, 8080)
	want := []int{1234, 5678}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseNetstatListeners = %v; want %v", got, want)
	}
}

func TestParseNetstatListenersNoMatch(t *testing.T) {
	out := "  TCP    0.0.0.0:80    0.0.0.0:0    LISTENING    4\n"
	if got := parseNetstatListeners(out, 8080); got != nil {
		t.Errorf("parseNetstatListeners = %v; want nil", got)
	}
}

func TestNativeAliveSelf(t *testing.T) {
	if !Native().Alive(os.Getpid()) {
		t.Error("Alive(self) = false")
	}
}
