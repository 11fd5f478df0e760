package readiness

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "Standard", want: ModeStandard},
		{in: "quiet", want: ModeQuiet},
		{in: "poll", want: ModePoll},
		{in: "polling", want: ModePoll},
		{in: "select", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeStringRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeAuto, ModeStandard, ModeQuiet, ModePoll} {
		got, err := ParseMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, got)
	}
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestClassify(t *testing.T) {
	pollOn := []Rule{
		{OS: "linux", Machine: "64", From: "go1.21.0", Until: "go1.21.6"},
	}

	tests := []struct {
		name string
		env  Environment
		want Mode
	}{
		{
			name: "windows is quiet",
			env:  Environment{OS: "windows", Machine: "amd64", RuntimeVersion: "go1.25.5"},
			want: ModeQuiet,
		},
		{
			name: "windows wins over polling rules",
			env:  Environment{OS: "windows", Machine: "x86_64", RuntimeVersion: "go1.21.3"},
			want: ModeQuiet,
		},
		{
			name: "64-bit linux inside the window polls",
			env:  Environment{OS: "linux", Machine: "x86_64", RuntimeVersion: "go1.21.3"},
			want: ModePoll,
		},
		{
			name: "lower bound is inclusive",
			env:  Environment{OS: "linux", Machine: "aarch64", RuntimeVersion: "go1.21.0"},
			want: ModePoll,
		},
		{
			name: "upper bound is exclusive",
			env:  Environment{OS: "linux", Machine: "x86_64", RuntimeVersion: "go1.21.6"},
			want: ModeStandard,
		},
		{
			name: "32-bit linux inside the window is standard",
			env:  Environment{OS: "linux", Machine: "i686", RuntimeVersion: "go1.21.3"},
			want: ModeStandard,
		},
		{
			name: "development runtime is standard",
			env:  Environment{OS: "linux", Machine: "x86_64", RuntimeVersion: "devel go1.26-abcdef"},
			want: ModeStandard,
		},
		{
			name: "darwin is standard",
			env:  Environment{OS: "darwin", Machine: "arm64", RuntimeVersion: "go1.21.3"},
			want: ModeStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.env, pollOn))
		})
	}
}

func TestClassifyWithoutRules(t *testing.T) {
	env := Environment{OS: "linux", Machine: "x86_64", RuntimeVersion: "go1.21.3"}
	assert.Equal(t, ModeStandard, Classify(env, nil))
}

func TestRuleValidate(t *testing.T) {
	assert.NoError(t, Rule{}.Validate())
	assert.NoError(t, Rule{OS: "linux", From: "go1.21.0", Until: "go1.22"}.Validate())
	assert.Error(t, Rule{From: "1.21"}.Validate())
	assert.Error(t, Rule{Until: "go1.x"}.Validate())
	assert.Error(t, Rule{From: "go1.22", Until: "go1.21"}.Validate())
}

func TestProbeIsCached(t *testing.T) {
	first := Probe()
	second := Probe()

	assert.Equal(t, first, second)
	assert.Equal(t, runtime.GOOS, first.OS)
	assert.Equal(t, runtime.Version(), first.RuntimeVersion)
	assert.NotEmpty(t, first.Machine)
}

func TestEnvironmentIs64Bit(t *testing.T) {
	assert.True(t, Environment{Machine: "x86_64"}.Is64Bit())
	assert.True(t, Environment{Machine: "arm64"}.Is64Bit())
	assert.False(t, Environment{Machine: "i386"}.Is64Bit())
}
