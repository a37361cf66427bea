// Package config loads application settings from defaults, an optional YAML
// file and BUDGETCRAFT_* environment variables, in that order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "BUDGETCRAFT_"

type Application struct {
	Log     Log     `koanf:"log"`
	Export  Export  `koanf:"export"`
	Import  Import  `koanf:"import"`
	Seed    Seed    `koanf:"seed"`
	Migrate Migrate `koanf:"migrate"`
}

type Log struct {
	Level string `koanf:"level"`
}

type Export struct {
	Company     string `koanf:"company"`
	Orientation string `koanf:"orientation"`
}

type Import struct {
	MaxRows int `koanf:"maxrows"`
}

type Seed struct {
	Enabled bool   `koanf:"enabled"`
	Owner   string `koanf:"owner"`
}

type Migrate struct {
	Totals bool `koanf:"totals"`
}

// Default returns the settings used when nothing else is configured.
func Default() Application {
	return Application{
		Log:     Log{Level: "info"},
		Export:  Export{Company: "", Orientation: "landscape"},
		Import:  Import{MaxRows: 5000},
		Seed:    Seed{Enabled: false, Owner: ""},
		Migrate: Migrate{Totals: true},
	}
}

// Load merges defaults, the YAML file at path (skipped if missing) and env.
func Load(path string) (Application, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		log.Errorf("error loading config defaults: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var cfg Application
	if err := k.Unmarshal("", &cfg); err != nil {
		log.Errorf("error unmarshalling config: %v", err)
		return Application{}, err
	}
	return cfg, nil
}

// LogLevel parses Log.Level, falling back to info.
func (a Application) LogLevel() log.Level {
	lvl, err := log.ParseLevel(a.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
