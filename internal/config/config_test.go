package config

import (
	"io"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"sigs.k8s.io/yaml"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.MaxJobs)
	assert.Equal(t, ">> ", cfg.Prompt)
	assert.Equal(t, unix.SIGKILL, cfg.Signal())
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/myshell/config.yaml", []byte("max_jobs: 5\ninterrupt_signal: SIGTERM\n"), 0600))

	for _, path := range []string{"/etc/myshell", "/etc/myshell/config.yaml"} {
		t.Run(path, func(t *testing.T) {
			cfg, err := Load(fs, path)
			require.NoError(t, err)
			assert.Equal(t, 5, cfg.MaxJobs)
			assert.Equal(t, unix.SIGTERM, cfg.Signal())
			// Unset keys keep their defaults.
			assert.Equal(t, ">> ", cfg.Prompt)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	cases := map[string]string{
		"unknown-field": "colour: red\n",
		"zero-jobs":     "max_jobs: 0\n",
		"bad-signal":    "interrupt_signal: SIGFOO\n",
		"bad-type":      "max_jobs: many\n",
	}

	for tn, contents := range cases {
		t.Run(tn, func(t *testing.T) {
			path := "/" + tn + ".yaml"
			require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0600))
			_, err := Load(fs, path)
			assert.Error(t, err)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := Load(fs, "/nope.yaml")
		assert.Error(t, err)
	})
}

func TestInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger := log.New(io.Discard, "", 0)

	require.NoError(t, Initialize(fs, "/home/u/.myshell", logger))
	cfg, err := Load(fs, "/home/u/.myshell")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// A second run keeps user edits.
	require.NoError(t, afero.WriteFile(fs, "/home/u/.myshell/config.yaml", []byte("max_jobs: 3\n"), 0600))
	require.NoError(t, Initialize(fs, "/home/u/.myshell", logger))
	cfg, err = Load(fs, "/home/u/.myshell")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxJobs)
}
