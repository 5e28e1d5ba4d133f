package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/spf13/viper"
)

// FileName is the project marker and configuration file.
const FileName = "fragfusion.yaml"

// Load reads fragfusion.yaml from the project root and applies it on top of
// domain.DefaultConfig. Environment variables override keys present in the
// file: fragfusion.server.addr is read from FRAGFUSION_SERVER_ADDR.
func Load(root string) (domain.Config, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return Map(path, f.FragFusion)
}

// LoadOrDefault behaves like Load but returns defaults when the file is absent.
func LoadOrDefault(root string) (domain.Config, error) {
	cfg, err := Load(root)
	if err != nil && domain.IsKind(err, domain.KindNotFound) {
		var pe *os.PathError
		if errors.As(err, &pe) {
			return domain.DefaultConfig(), nil
		}
	}
	return cfg, err
}
