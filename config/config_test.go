package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ClaraUktar/pepti-map/internal/merge"
	"github.com/spf13/viper"
)

func TestLoad_defaults(t *testing.T) {
	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatal(err)
	}
	c, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	if c.KmerLength != 7 {
		t.Errorf("KmerLength = %d, want 7", c.KmerLength)
	}
	if c.Threshold() != 7000 {
		t.Errorf("Threshold() = %d, want 7000", c.Threshold())
	}
	if c.Method() != merge.Agglomerative {
		t.Errorf("Method() = %v, want %v", c.Method(), merge.Agglomerative)
	}
	if !c.ReplaceIsoleucine {
		t.Error("ReplaceIsoleucine = false, want true")
	}
	if c.Cutoff != -1 {
		t.Errorf("Cutoff = %d, want -1", c.Cutoff)
	}
	if c.Threads < 1 {
		t.Errorf("Threads = %d, want at least 1", c.Threads)
	}
}

func TestLoad_sources(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	yaml := "kmer-length: 5\nmerge-method: full-matrix\njaccard-threshold: 0.5\n"
	if err := os.WriteFile(settings, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PEPTIMAP_KMER_LENGTH", "6")
	t.Setenv("PEPTIMAP_THREADS", "3")

	v := viper.New()
	if err := Init(v, settings); err != nil {
		t.Fatal(err)
	}
	v.Set("jaccard-threshold", 0.9)

	c, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.KmerLength != 6 {
		t.Errorf("KmerLength = %d, want 6 from the environment", c.KmerLength)
	}
	if c.Threads != 3 {
		t.Errorf("Threads = %d, want 3 from the environment", c.Threads)
	}
	if c.Method() != merge.FullMatrix {
		t.Errorf("Method() = %v, want %v from the settings file", c.Method(), merge.FullMatrix)
	}
	if c.JaccardThreshold != 0.9 {
		t.Errorf("JaccardThreshold = %v, want 0.9 from the override", c.JaccardThreshold)
	}
}

func TestInit_missingSettings(t *testing.T) {
	if err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Init() read a missing settings file")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			KmerLength:       7,
			JaccardThreshold: 0.7,
			MergeMethod:      "full-matrix",
			SketchSize:       128,
			Threads:          1,
		}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"threshold of 1", func(c *Config) { c.JaccardThreshold = 1 }, false},
		{"kmer length", func(c *Config) { c.KmerLength = 0 }, true},
		{"negative threshold", func(c *Config) { c.JaccardThreshold = -0.1 }, true},
		{"threshold above 1", func(c *Config) { c.JaccardThreshold = 1.5 }, true},
		{"merge method", func(c *Config) { c.MergeMethod = "simple" }, true},
		{"sketch size", func(c *Config) { c.SketchSize = 0 }, true},
		{"threads", func(c *Config) { c.Threads = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Settings(t *testing.T) {
	c := Config{KmerLength: 6, JaccardThreshold: 0.75, MergeMethod: "full-matrix", SketchSize: 64, Cutoff: -1}
	s := c.Settings()
	if s["kmer-length"] != "6" || s["jaccard-threshold"] != "0.75" || s["merge-method"] != "full-matrix" {
		t.Errorf("Settings() = %v", s)
	}
}
