package dupfind

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	all := config.GetAllConfig()
	if all.Hash.Default != "sha256" {
		t.Errorf("Expected default hash algorithm 'sha256', got '%s'", all.Hash.Default)
	}
	if all.Performance.HashBuffer != "64K" {
		t.Errorf("Expected default hash buffer '64K', got '%s'", all.Performance.HashBuffer)
	}
	if all.Output.Color != "auto" {
		t.Errorf("Expected default color 'auto', got '%s'", all.Output.Color)
	}
	if all.Verbose.Level != 0 {
		t.Errorf("Expected default verbose level 0, got %d", all.Verbose.Level)
	}

	// A missing config file is never created
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Config file should not have been created")
	}

	assert.NoError(t, config.Validate())
}

func TestConfigEmptyPath(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sha256", config.GetHashConfig().Default)
}

func TestConfigFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	content := `[filehash]
default = blake3

[performance]
hash_buffer = 2M

[output]
color = never

[verbose]
level = 2
debug = scan,hash
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	all := config.GetAllConfig()
	assert.Equal(t, "blake3", all.Hash.Default)
	assert.Equal(t, "2M", all.Performance.HashBuffer)
	assert.Equal(t, "never", all.Output.Color)
	assert.Equal(t, 2, all.Verbose.Level)
	assert.Equal(t, "scan,hash", all.Verbose.Debug)

	opts, err := OptionsFromConfig(config, "/root", true)
	require.NoError(t, err)
	assert.Equal(t, 2*1024*1024, opts.HashBuffer)
	assert.Equal(t, "blake3", opts.Algorithm)
	assert.True(t, opts.Recursive)
}

func TestConfigPartialFileFallsBack(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(configPath, []byte("[output]\ncolor = always\n"), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "sha256", config.GetHashConfig().Default)
	assert.Equal(t, "64K", config.GetPerformanceConfig().HashBuffer)
	assert.Equal(t, "always", config.GetOutputConfig().Color)
}

func TestConfigOverrides(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	err = config.ApplyOverrides([]string{
		"algorithm:sha512_256",
		"hash_buffer:1M",
		"color:always",
		"level:3",
		"debug:group,resolve",
	})
	if err != nil {
		t.Fatalf("Failed to apply overrides: %v", err)
	}

	all := config.GetAllConfig()
	assert.Equal(t, "sha512_256", all.Hash.Default)
	assert.Equal(t, "1M", all.Performance.HashBuffer)
	assert.Equal(t, "always", all.Output.Color)
	assert.Equal(t, 3, all.Verbose.Level)
	assert.Equal(t, "group,resolve", all.Verbose.Debug)
	assert.NoError(t, config.Validate())
}

func TestConfigInvalidOverrides(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	err = config.ApplyOverrides([]string{"nocolon"})
	assert.Error(t, err)

	err = config.ApplyOverrides([]string{"format:json"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported override key"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		override string
		wantErr  error
	}{
		{"algorithm:md5", ErrUnsupportedAlgorithm},
		{"hash_buffer:lots", ErrInvalidBufferSize},
		{"hash_buffer:0", ErrInvalidBufferSize},
		{"color:sometimes", ErrInvalidColorMode},
		{"level:9", ErrInvalidVerboseLevel},
	}

	for _, tt := range tests {
		t.Run(tt.override, func(t *testing.T) {
			config, err := LoadConfig("")
			require.NoError(t, err)
			require.NoError(t, config.ApplyOverrides([]string{tt.override}))

			assert.ErrorIs(t, config.Validate(), tt.wantErr)
		})
	}
}

func TestHashAlgorithmValidation(t *testing.T) {
	testCases := []struct {
		algorithm string
		valid     bool
	}{
		{"sha256", true},
		{"SHA256", true},
		{"sha512_256", true},
		{"blake3", true},
		{"sha1", false},
		{"md5", false},
		{"", false},
	}

	for _, tc := range testCases {
		err := ValidateHashAlgorithm(tc.algorithm)
		if tc.valid && err != nil {
			t.Errorf("Expected algorithm '%s' to be valid, got error: %v", tc.algorithm, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("Expected algorithm '%s' to be invalid, but got no error", tc.algorithm)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DUPFIND_ALGORITHM", "blake3")
	t.Setenv("DUPFIND_HASH_BUFFER", "128K")
	t.Setenv("DUPFIND_COLOR", "")
	t.Setenv("DUPFIND_CONFIG", "/etc/dupfind.ini")

	env, err := LoadEnvOverrides()
	require.NoError(t, err)

	assert.Equal(t, "/etc/dupfind.ini", env.Config)
	assert.Equal(t, []string{"algorithm:blake3", "hash_buffer:128K"}, env.Overrides())

	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, config.ApplyOverrides(env.Overrides()))
	assert.Equal(t, "blake3", config.GetHashConfig().Default)
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	assert.Equal(t, "config", filepath.Base(path))
	assert.Equal(t, "dupfind", filepath.Base(filepath.Dir(path)))
}
