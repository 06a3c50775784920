// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/ClaraUktar/pepti-map/internal/merge"
	"github.com/ClaraUktar/pepti-map/internal/similarity"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read as a setting,
// e.g. PEPTIMAP_THREADS
const EnvPrefix = "PEPTIMAP"

// defaults of every setting
var defaults = map[string]interface{}{
	"kmer-length":              7,
	"jaccard-threshold":        0.7,
	"merge-method":             merge.Agglomerative.String(),
	"precompute-intersections": false,
	"replace-isoleucine":       true,
	"sketch-size":              similarity.DefaultSketchSize,
	"cutoff":                   -1,
	"temp-dir":                 "./temp",
	"out":                      "./out",
	"threads":                  runtime.NumCPU(),
	"index-cache":              "",
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file, the environment
// and those available from the command line
type Config struct {
	// length of peptide and read k-mers
	KmerLength int `mapstructure:"kmer-length"`

	// clusters with a Jaccard index above this are merged
	JaccardThreshold float64 `mapstructure:"jaccard-threshold"`

	// full-matrix or agglomerative-clustering
	MergeMethod string `mapstructure:"merge-method"`

	// count cluster intersections while matching. Costs memory quadratic
	// in the number of clusters but makes similarities exact
	PrecomputeIntersections bool `mapstructure:"precompute-intersections"`

	// treat I and L as the same amino acid
	ReplaceIsoleucine bool `mapstructure:"replace-isoleucine"`

	// hashes per MinHash sketch
	SketchSize int `mapstructure:"sketch-size"`

	// truncate reads to this many bases, if > 0
	Cutoff int `mapstructure:"cutoff"`

	// checkpoint directory
	TempDir string `mapstructure:"temp-dir"`

	// output directory
	Out string `mapstructure:"out"`

	// worker count
	Threads int `mapstructure:"threads"`

	// optional path of a cached peptide k-mer index
	IndexCache string `mapstructure:"index-cache"`
}

// Init sets defaults on v, reads PEPTIMAP_ environment variables and, if
// settingsFile isn't empty, the YAML settings file. Flags bound to v
// override all of them
func Init(v *viper.Viper, settingsFile string) error {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if settingsFile == "" {
		return nil
	}
	v.SetConfigFile(settingsFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", settingsFile, err)
	}
	return nil
}

// New returns a new Config struct populated by the global Viper's settings
func New() (*Config, error) {
	return Load(viper.GetViper())
}

// Load unmarshals and validates the settings of v
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects settings outside their range
func (c *Config) Validate() error {
	if c.KmerLength < 1 {
		return fmt.Errorf("kmer-length must be at least 1, got %d", c.KmerLength)
	}
	if c.JaccardThreshold < 0 || c.JaccardThreshold > 1 {
		return fmt.Errorf("jaccard-threshold must be in [0, 1], got %v", c.JaccardThreshold)
	}
	if _, err := merge.ParseMethod(c.MergeMethod); err != nil {
		return err
	}
	if c.SketchSize < 1 {
		return fmt.Errorf("sketch-size must be at least 1, got %d", c.SketchSize)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	return nil
}

// Method is the parsed merge method
func (c *Config) Method() merge.Method {
	m, _ := merge.ParseMethod(c.MergeMethod)
	return m
}

// Threshold is the Jaccard threshold in fixed point
func (c *Config) Threshold() uint16 {
	return similarity.ToFixed(c.JaccardThreshold)
}

// Settings lists the values that change a run's results. They are
// recorded with a run's checkpoints so a resume with different
// settings is caught
func (c *Config) Settings() map[string]string {
	return map[string]string{
		"kmer-length":              strconv.Itoa(c.KmerLength),
		"jaccard-threshold":        strconv.FormatFloat(c.JaccardThreshold, 'g', -1, 64),
		"merge-method":             c.MergeMethod,
		"precompute-intersections": strconv.FormatBool(c.PrecomputeIntersections),
		"replace-isoleucine":       strconv.FormatBool(c.ReplaceIsoleucine),
		"sketch-size":              strconv.Itoa(c.SketchSize),
		"cutoff":                   strconv.Itoa(c.Cutoff),
	}
}
