package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// unsetVariables clears the config variables for the duration of the test.
func unsetVariables(t *testing.T) {
	t.Helper()
	for _, name := range variables {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func(c Config) Config
		wantErr error
	}{
		{
			name: "Defaults",
			want: func(c Config) Config { return c },
		},
		{
			name: "Overrides",
			env: map[string]string{
				"LISTEN_ADDR":       ":9000",
				"REDIS_ADDR":        "cache:6380",
				"PAGE_SIZE":         "30",
				"PAGINATION_OFFSET": "3",
				"MAX_REACTIONS":     "4",
				"LOG_LEVEL":         "debug",
			},
			want: func(c Config) Config {
				c.ListenAddr = ":9000"
				c.RedisAddr = "cache:6380"
				c.PageSize = 30
				c.PaginationOffset = 3
				c.MaxReactions = 4
				c.LogLevel = "debug"
				return c
			},
		},
		{
			name:    "NotANumber",
			env:     map[string]string{"PAGE_SIZE": "many"},
			wantErr: ErrInvalid,
		},
		{
			name:    "PageSizeTooLarge",
			env:     map[string]string{"PAGE_SIZE": "500"},
			wantErr: ErrInvalid,
		},
		{
			name:    "NegativeOffset",
			env:     map[string]string{"PAGINATION_OFFSET": "-1"},
			wantErr: ErrInvalid,
		},
		{
			name:    "BadRedisAddr",
			env:     map[string]string{"REDIS_ADDR": "localhost"},
			wantErr: ErrInvalid,
		},
		{
			name:    "UnknownTimezone",
			env:     map[string]string{"TIMEZONE": "Mars/Olympus"},
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load(fileLayer(tt.env))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			want := tt.want(Defaults())
			if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("Config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ErrorNamesVariable(t *testing.T) {
	_, err := load(fileLayer(map[string]string{"MAX_REACTIONS": "0"}))
	if err == nil || err.Error() != "invalid config: MAX_REACTIONS" {
		t.Errorf("Got error %v", err)
	}
}

func TestLoad_Layers(t *testing.T) {
	cfg, err := load(
		fileLayer(map[string]string{"PAGE_SIZE": "15", "MAX_REACTIONS": "7", "PATH": "/bin"}),
		fileLayer(map[string]string{"PAGE_SIZE": "12"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	want := Defaults()
	want.PageSize = 12
	want.MaxReactions = 7
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Location(t *testing.T) {
	cfg, err := load(fileLayer(map[string]string{"TIMEZONE": "UTC"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Got location %v, want UTC", cfg.Location())
	}
	if (Config{}).Location() != time.Local {
		t.Error("Unset location should be time.Local")
	}
}

func TestConfig_Level(t *testing.T) {
	for s, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
	} {
		if got := (Config{LogLevel: s}).Level(); got != want {
			t.Errorf("Level(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "MAX_REACTIONS=7\nPAGE_SIZE=15\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// The process environment wins over the file.
	unsetVariables(t)
	t.Setenv("PAGE_SIZE", "12")
	t.Setenv("UNRELATED_SETTING", "x")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxReactions != 7 || cfg.PageSize != 12 {
		t.Errorf("Got MaxReactions=%d PageSize=%d, want 7 and 12", cfg.MaxReactions, cfg.PageSize)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing file should not fail: %v", err)
	}
}
