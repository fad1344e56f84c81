package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sys/unix"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	DirName           = ".myshell"
)

type Configuration struct {
	Prompt          string `json:"prompt"`
	MaxJobs         int    `json:"max_jobs" validate:"gte=1,lte=65536"`
	InterruptSignal string `json:"interrupt_signal" validate:"required,oneof=SIGKILL SIGTERM SIGINT SIGQUIT SIGHUP"`
	HistoryFile     string `json:"history_file"`
	Debug           bool   `json:"debug"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Signal resolves InterruptSignal.
func (c *Configuration) Signal() unix.Signal {
	if sig := unix.SignalNum(c.InterruptSignal); sig != 0 {
		return sig
	}
	return unix.SIGKILL
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
