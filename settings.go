package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/BurntSushi/toml"
)

const defaultConfigFile = "trie.conf"

var (
	settings = defaultSettings()
)

var LogLevelMap = map[string]int{
	"DEBUG": LevelDebug,
	"INFO":  LevelInfo,
	"WARN":  LevelWarn,
	"ERROR": LevelError,
}

type Settings struct {
	Version    string
	Debug      bool
	Corpus     CorpusSettings     `toml:"corpus"`
	Query      QuerySettings      `toml:"query"`
	Log        LogSettings        `toml:"log"`
	Cache      CacheSettings      `toml:"cache"`
	Redis      RedisSettings      `toml:"redis"`
	Audit      AuditSettings      `toml:"audit"`
	Postgresql PostgresqlSettings `toml:"postgresql"`
	Metrics    MetricsSettings    `toml:"metrics"`
}

type CorpusSettings struct {
	File string
	// Strict fails the build on the first token outside a-z and '.'.
	Strict          bool
	ResetSingleWord bool `toml:"reset-single-word"`
}

type QuerySettings struct {
	File string
}

type RedisSettings struct {
	Host     string
	Port     int
	DB       int
	Password string
}

func (s RedisSettings) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

type PostgresqlSettings struct {
	Host        string
	Port        int
	User        string
	Password    string
	DB          string
	Sslmode     string
	Sslcert     string
	Sslkey      string
	Sslrootcert string
}

type LogSettings struct {
	Console bool
	File    string
	Level   string
}

func (ls LogSettings) LogLevel() int {
	l, ok := LogLevelMap[ls.Level]
	if !ok {
		panic("Config error: invalid log level: " + ls.Level)
	}
	return l
}

type CacheSettings struct {
	Backend         string
	Expire          int
	Maxcount        int
	MemcacheServers []string `toml:"memcache-servers"`
}

type AuditSettings struct {
	Backend string
	Expire  int64
}

type MetricsSettings struct {
	File string
}

func defaultSettings() Settings {
	return Settings{
		Version: "0.1.0",
		Corpus:  CorpusSettings{ResetSingleWord: true},
		Log:     LogSettings{Console: true, Level: "WARN"},
		Cache: CacheSettings{
			Expire:          600,
			MemcacheServers: []string{"127.0.0.1:11211"},
		},
		Redis: RedisSettings{Host: "127.0.0.1", Port: 6379},
		Audit: AuditSettings{Expire: 86400},
		Postgresql: PostgresqlSettings{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "trie",
			DB:      "trie",
			Sslmode: "disable",
		},
	}
}

func (s Settings) validate() error {
	if _, ok := LogLevelMap[s.Log.Level]; !ok {
		return fmt.Errorf("invalid log level %q", s.Log.Level)
	}
	switch s.Cache.Backend {
	case "", "memory", "memcache", "redis":
	default:
		return fmt.Errorf("invalid cache backend %q", s.Cache.Backend)
	}
	switch s.Audit.Backend {
	case "", "redis", "postgresql":
	default:
		return fmt.Errorf("invalid audit backend %q", s.Audit.Backend)
	}
	return nil
}

// loadSettings parses command line arguments and the toml config file they
// point at. Positional arguments name the corpus and query files and take
// precedence over the config file.
func loadSettings(args []string, stderr io.Writer) (Settings, error) {
	s := defaultSettings()

	var configFile string
	var strict bool
	fset := flag.NewFlagSet("trie", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&configFile, "c", defaultConfigFile, "Look for trie toml-formatting config file in this directory")
	fset.BoolVar(&strict, "strict", false, "Fail on corpus tokens that are not lowercase words")
	fset.Usage = func() {
		fmt.Fprintln(fset.Output(), "usage: trie [-c config] [-strict] [corpus-file [query-file]]")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return s, err
	}

	if _, err := toml.DecodeFile(configFile, &s); err != nil {
		explicit := false
		fset.Visit(func(f *flag.Flag) {
			if f.Name == "c" {
				explicit = true
			}
		})
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return s, fmt.Errorf("%s is not a valid toml config file: %w", configFile, err)
		}
	}

	if strict {
		s.Corpus.Strict = true
	}
	switch fset.NArg() {
	case 0:
	case 1:
		s.Corpus.File = fset.Arg(0)
	case 2:
		s.Corpus.File = fset.Arg(0)
		s.Query.File = fset.Arg(1)
	default:
		fset.Usage()
		return s, fmt.Errorf("too many arguments: %d", fset.NArg())
	}

	if s.Corpus.File == "" || s.Query.File == "" {
		return s, errors.New("both a corpus file and a query file are required")
	}
	return s, s.validate()
}
