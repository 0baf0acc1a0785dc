package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper loads configuration from the given file path and returns a
// Viper-backed Config. The format is inferred from the filename
// extension, and the file is watched so edits apply without a restart.
func NewViper(pathFile string) (*Viper, error) {
	dir, name := path.Dir(pathFile), path.Base(pathFile)
	name = name[:len(name)-len(path.Ext(name))]

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(name)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", pathFile, "err", err)
			return
		}
		slog.Info("config success reloaded", "path", pathFile)
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory. configType must be
// a format Viper understands, such as "yaml" or "json". Tests use this
// to avoid touching the filesystem.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := viper.New()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (c *Viper) GetBool(key string) bool {
	return c.v.GetBool(key)
}

func (c *Viper) GetInt(key string) int {
	return c.v.GetInt(key)
}

func (c *Viper) GetInt32(key string) int32 {
	return c.v.GetInt32(key)
}

func (c *Viper) GetUint16(key string) uint16 {
	return uint16(c.v.GetUint(key))
}

func (c *Viper) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetSecond reads an integer key as a duration in seconds.
func (c *Viper) GetSecond(key string) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * time.Second
}

// GetMinute reads an integer key as a duration in minutes.
func (c *Viper) GetMinute(key string) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * time.Minute
}

// GetDay reads an integer key as a duration in days of 24 hours.
func (c *Viper) GetDay(key string) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * 24 * time.Hour
}

func (c *Viper) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBinary reads a string key and decodes it from base64. A value that
// does not decode yields nil.
func (c *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(c.v.GetString(key))
	if err != nil {
		return nil
	}

	return data
}

// GetArray reads a comma-separated string key. Blank elements are
// dropped so an unset key yields no elements, not [""].
func (c *Viper) GetArray(key string) []string {
	var out []string
	for _, s := range strings.Split(c.v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}

// Close implements io.Closer for interface compatibility.
func (c *Viper) Close() error {
	// The fsnotify watcher stops with the process.
	return nil
}
