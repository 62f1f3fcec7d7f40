package kvstore

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Kind names a backend.
type Kind string

// Backend kinds understood by Open.
const (
	KindMemory      Kind = "memory"
	KindBolt        Kind = "bolt"
	KindPebble      Kind = "pebble"
	KindRedis       Kind = "redis"
	KindKyotoTycoon Kind = "kyoto_tycoon"
	KindMySQL       Kind = "mysql"
)

// chunksNamespaceSuffix names the namespace Open uses for split chunks.
const chunksNamespaceSuffix = ".chunks"

// Config selects and sizes a Store.
type Config struct {
	// Kind selects the backend; empty means KindMemory.
	Kind Kind `mapstructure:"kind"`

	// Path is the bbolt file or the pebble directory. An empty pebble path
	// opens an in-memory database.
	Path string `mapstructure:"path"`

	// Namespace overrides the namespace option when non-empty.
	Namespace string `mapstructure:"namespace"`

	Redis RedisConfig   `mapstructure:"redis"`
	Split SplitSettings `mapstructure:"split"`
}

// RedisConfig locates a Redis server.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SplitSettings turns on split records for Open.
type SplitSettings struct {
	Enabled     bool `mapstructure:"enabled"`
	SplitConfig `mapstructure:",squash"`
}

// Defaults applied by LoadConfig.
const (
	DefaultSplitThreshold = 1 << 20
	DefaultSplitChunk     = 256 << 10
	DefaultRedisAddr      = "localhost:6379"
)

const (
	configName      = ".sonlib"
	configType      = "yaml"
	envPrefix       = "SONLIB"
	envKeySeparator = "_"
)

// Validate checks that the configuration can be opened.
func (c *Config) Validate() error {
	switch c.Kind {
	case "", KindMemory, KindPebble, KindRedis, KindKyotoTycoon, KindMySQL:
	case KindBolt:
		if c.Path == "" {
			return errors.New("kvstore: bolt backend needs a path")
		}
	default:
		return errors.Wrapf(ErrUnsupportedBackend, "kind %q", c.Kind)
	}
	if c.Split.Enabled {
		return c.Split.validate()
	}

	return nil
}

// LoadConfig reads configuration from defaults, a YAML file and SONLIB_*
// environment variables, later sources winning. With an empty path the
// file .sonlib.yaml is searched for in the working directory and then in
// $HOME; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("kind", string(KindMemory))
	v.SetDefault("path", "")
	v.SetDefault("namespace", DefaultNamespace)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("split.enabled", false)
	v.SetDefault("split.threshold", DefaultSplitThreshold)
	v.SetDefault("split.chunk", DefaultSplitChunk)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "kvstore: read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "kvstore: unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "kvstore: validate config")
	}

	return &cfg, nil
}

// WithRegisterer makes Open wrap the store in an Instrumented registered
// on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = reg
	}
}

// Open builds the Store described by cfg: the backend, the split layer when
// cfg.Split.Enabled, and the metrics layer when WithRegisterer is given.
//
// Errors:
//   - ErrUnsupportedBackend for the kyoto_tycoon and mysql kinds and for
//     unknown kinds.
//   - Backend errors from opening files or reaching Redis.
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "kvstore: Open")
	}
	o := buildOptions(opts)
	if cfg.Namespace != "" {
		o.Namespace = cfg.Namespace
	}
	chunksNS := o.Namespace + chunksNamespaceSuffix

	var records, chunks Store
	switch cfg.Kind {
	case "", KindMemory:
		records = newStore(&memoryEngine{data: make(map[int64][]byte)}, KindMemory, o)
		if cfg.Split.Enabled {
			chunks = newStore(&memoryEngine{data: make(map[int64][]byte)}, KindMemory, o)
		}

	case KindBolt:
		db, err := openBoltDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		eng, err := newBoltEngine(db, o.Namespace, true)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		records = newStore(eng, KindBolt, o)
		if cfg.Split.Enabled {
			ceng, err := newBoltEngine(db, chunksNS, false)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			chunks = newStore(ceng, KindBolt, o)
		}

	case KindPebble:
		db, err := openPebbleDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		mu := &sync.Mutex{}
		eng, err := newPebbleEngine(db, mu, o.Namespace, true)
		if err == nil && cfg.Split.Enabled {
			var ceng *pebbleEngine
			if ceng, err = newPebbleEngine(db, mu, chunksNS, false); err == nil {
				chunks = newStore(ceng, KindPebble, o)
			}
		}
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		records = newStore(eng, KindPebble, o)

	case KindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrapf(err, "redis: ping %s", cfg.Redis.Addr)
		}
		records = newStore(newRedisEngine(client, o.Namespace, true), KindRedis, o)
		if cfg.Split.Enabled {
			chunks = newStore(newRedisEngine(client, chunksNS, false), KindRedis, o)
		}

	default:
		return nil, errors.Wrapf(ErrUnsupportedBackend, "kvstore: Open(%s)", cfg.Kind)
	}

	s := records
	if cfg.Split.Enabled {
		split, err := NewSplitStore(records, chunks, cfg.Split.SplitConfig, opts...)
		if err != nil {
			_ = records.Close()
			return nil, err
		}
		s = split
	}
	if o.Registerer != nil {
		inst, err := NewInstrumented(s, o.Registerer)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = inst
	}

	return s, nil
}
