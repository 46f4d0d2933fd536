// Package runner provides the CLI-facing layer around the pvm core: config
// loading, blob caching/storage, and trace rendering. None of this is part
// of the deterministic VM itself.
package runner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"

	"github.com/jamvm/pvm/internal/plog"
)

// tomlSettings mirrors the teacher's cmd/gprobe config loader: field names
// map straight across (no snake_case folding) and an unrecognized field is
// a hard error rather than being silently dropped.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see %s#%s", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Config holds the CLI runner's settings: gas limit, initial PC, trace sink
// selection, and cache/store sizing.
type Config struct {
	GasLimit      uint64
	InitialPC     uint64
	TraceSink     string // "none", "slice", "snappy"
	TracePath     string
	CacheEntries  int
	BlobStorePath string
}

// DefaultConfig mirrors the teacher's "Load defaults, then overlay file,
// then overlay flags" pattern.
var DefaultConfig = Config{
	GasLimit:     1_000_000,
	InitialPC:    0,
	TraceSink:    "none",
	CacheEntries: 256,
}

// LoadConfig reads a TOML config file into cfg, starting from whatever cfg
// already holds (the caller supplies DefaultConfig first).
func LoadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	if err != nil {
		plog.Root().Error("failed to load config", "path", path, "err", err)
	}
	return err
}
