package config

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a key is absent from every source.
const (
	// DefaultSplitKey is the field split points are computed on when none is
	// configured. The primary identifier field exists on every document.
	DefaultSplitKey = "_id"

	// DefaultSplitSizeMB is the target chunk size, in megabytes, passed to
	// the split-point command when none is configured.
	DefaultSplitSizeMB = 64

	// DefaultBatchSize is the cursor batch size for metadata catalog reads.
	DefaultBatchSize = 1000

	// DefaultIdleTimeout is how long a released connection stays pooled
	// before it is torn down.
	DefaultIdleTimeout = time.Minute
)

// ErrMissingKey is returned by Resolve when a required key has no value.
var ErrMissingKey = errors.New("missing required config key")

// Source is a typed key->value lookup with per-call default fallback.
// Implementations must return the given default when the key is absent or
// its value cannot be converted to the requested type.
type Source interface {
	// String returns the value for key, or def.
	String(key, def string) string

	// Int returns the value for key, or def.
	Int(key string, def int) int

	// Bool returns the value for key, or def.
	Bool(key string, def bool) bool

	// Duration returns the value for key, or def.
	Duration(key string, def time.Duration) time.Duration

	// StringSlice returns the value for key, or def. A scalar string value
	// is split on commas.
	StringSlice(key string, def []string) []string
}

// Map implements Source over a flat key->value map, typically unmarshaled
// from a YAML file. The zero value (nil map) is usable and returns defaults
// for every key.
type Map map[string]any

// Load reads a YAML config file into a Map.
func Load(path string) (Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	var m Map
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return m, nil
}

// WithEnv returns a copy of the map with environment overrides applied.
// A key "splitKey" is overridden by the variable "<prefix>_SPLITKEY" when
// that variable is set. Unknown variables are ignored; only keys already
// known to the caller are probed.
func (m Map) WithEnv(prefix string, keys ...string) Map {
	out := make(Map, len(m)+len(keys))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		if v, ok := os.LookupEnv(prefix + "_" + strings.ToUpper(k)); ok {
			out[k] = v
		}
	}
	return out
}

// String returns the value for key, or def.
func (m Map) String(key, def string) string {
	v, ok := m[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// Int returns the value for key, or def.
func (m Map) Int(key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the value for key, or def.
func (m Map) Bool(key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Duration returns the value for key, or def. String values use Go duration
// syntax ("30s", "2m"); bare numbers are taken as seconds.
func (m Map) Duration(key string, def time.Duration) time.Duration {
	switch v := m[key].(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// StringSlice returns the value for key, or def.
func (m Map) StringSlice(key string, def []string) []string {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

// Config is the resolved, validated configuration the planner and the
// connection provider consume.
type Config struct {
	Hosts       []string      // Seed "host:port" list for the cluster client
	Database    string        // Target database name
	Collection  string        // Target collection name
	Username    string        // Optional credential
	Password    string        // Optional credential
	AuthSource  string        // Database to authenticate against
	TLS         bool          // Negotiate TLS on cluster connections
	TLSCAFile   string        // Optional CA bundle path
	TLSInsecure bool          // Skip certificate verification
	SplitKey    string        // Field split points are computed on
	SplitSizeMB int           // Target chunk size for the split-point command
	BatchSize   int32         // Cursor batch size for catalog reads
	IdleTimeout time.Duration // Pool idle hint for released connections
}

// Resolve pulls every known key out of a Source, applies defaults, and
// validates the result. Hosts, database, and collection are required.
func Resolve(src Source) (*Config, error) {
	c := &Config{
		Hosts:       src.StringSlice("hosts", nil),
		Database:    src.String("database", ""),
		Collection:  src.String("collection", ""),
		Username:    src.String("username", ""),
		Password:    src.String("password", ""),
		AuthSource:  src.String("authSource", "admin"),
		TLS:         src.Bool("tls", false),
		TLSCAFile:   src.String("tlsCAFile", ""),
		TLSInsecure: src.Bool("tlsInsecure", false),
		SplitKey:    src.String("splitKey", DefaultSplitKey),
		SplitSizeMB: src.Int("splitSize", DefaultSplitSizeMB),
		BatchSize:   int32(src.Int("batchSize", DefaultBatchSize)),
		IdleTimeout: src.Duration("idleTimeout", DefaultIdleTimeout),
	}

	if len(c.Hosts) == 0 {
		return nil, errors.Wrap(ErrMissingKey, "hosts")
	}
	if c.Database == "" {
		return nil, errors.Wrap(ErrMissingKey, "database")
	}
	if c.Collection == "" {
		return nil, errors.Wrap(ErrMissingKey, "collection")
	}
	return c, nil
}

// Namespace is the fully qualified "database.collection" name.
func (c *Config) Namespace() string {
	return c.Database + "." + c.Collection
}

// Credential builds the driver credential, or nil when no username is set.
func (c *Config) Credential() *options.Credential {
	if c.Username == "" {
		return nil
	}
	return &options.Credential{
		Username:   c.Username,
		Password:   c.Password,
		AuthSource: c.AuthSource,
	}
}

// TLSConfig builds the TLS settings for cluster connections, or nil when
// TLS is disabled.
func (c *Config) TLSConfig() (*tls.Config, error) {
	if !c.TLS {
		return nil, nil
	}
	cfg := &tls.Config{InsecureSkipVerify: c.TLSInsecure}
	if c.TLSCAFile != "" {
		pem, err := os.ReadFile(c.TLSCAFile)
		if err != nil {
			return nil, errors.Wrapf(err, "reading CA file %s", c.TLSCAFile)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("no certificates found in %s", c.TLSCAFile)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// Keys lists every config key Resolve consults, in one place so callers can
// wire environment overrides without repeating the set.
func Keys() []string {
	return []string{
		"hosts", "database", "collection",
		"username", "password", "authSource",
		"tls", "tlsCAFile", "tlsInsecure",
		"splitKey", "splitSize", "batchSize", "idleTimeout",
	}
}
