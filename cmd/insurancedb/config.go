package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kjk/insurancedb/backup"
	"github.com/kjk/insurancedb/flatdb"
	"github.com/kjk/insurancedb/u"
)

// Config is read from a yaml file given with -config
type Config struct {
	DataDir     string              `yaml:"data_dir"`
	DBFile      string              `yaml:"db_file"`
	StagingDir  string              `yaml:"staging_dir"`
	LogDir      string              `yaml:"log_dir"`
	BackupDir   string              `yaml:"backup_dir"`
	BackupCodec string              `yaml:"backup_codec"`
	Verbose     bool                `yaml:"verbose"`
	Remote      backup.RemoteConfig `yaml:"remote"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:     "./data",
		DBFile:      flatdb.DefaultFileName,
		StagingDir:  flatdb.DefaultStagingDir,
		BackupDir:   "./backups",
		BackupCodec: backup.CodecZstd,
	}
}

// loadConfig returns defaults overridden by values from yaml file at path.
// Empty path means defaults only.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		d, err := os.ReadFile(u.ExpandTildeInPath(path))
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(d, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
		}
	}
	if _, err := backup.CodecExt(cfg.BackupCodec); err != nil {
		return nil, err
	}
	cfg.DataDir = u.ExpandTildeInPath(cfg.DataDir)
	cfg.LogDir = u.ExpandTildeInPath(cfg.LogDir)
	cfg.BackupDir = u.ExpandTildeInPath(cfg.BackupDir)
	return cfg, nil
}

func (c *Config) dbPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

func (c *Config) storeConfig() flatdb.Config {
	return flatdb.Config{
		DataDir:    c.DataDir,
		FileName:   c.DBFile,
		StagingDir: c.StagingDir,
		OnChange:   journalChange,
	}
}
