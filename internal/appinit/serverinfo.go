package appinit

import (
	"io/ioutil"
	"net/url"
	"runtime"

	errors "github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// FetchInfo is the section of the server config that bounds remote image
// fetches.
type FetchInfo struct {
	TimeoutMs int   `yaml:"timeoutMs"`
	MaxBytes  int64 `yaml:"maxBytes"`
}

// ComposeInfo is the section of the server config that bounds the image
// compositor and its worker pool.
type ComposeInfo struct {
	TargetWidth int `yaml:"targetWidth"`
	MaxPixels   int `yaml:"maxPixels"`
	NumWorkers  int `yaml:"numWorkers"`
}

// CacheInfo is the section of the server config for the optional resolve
// cache.
type CacheInfo struct {
	Enabled    bool   `yaml:"enabled"`
	DSN        string `yaml:"dsn"`
	TTLMinutes int    `yaml:"ttlMinutes"`
}

// ServerInfo is the Go struct for contents in serve.yaml.
type ServerInfo struct {
	Port           int         `yaml:"port"`
	BaseURL        string      `yaml:"baseUrl"`
	KeyFile        string      `yaml:"keyFile"`
	ShowTimingLogs bool        `yaml:"showTimingLogs"`
	Fetch          FetchInfo   `yaml:"fetch"`
	Compose        ComposeInfo `yaml:"compose"`
	Cache          CacheInfo   `yaml:"cache"`
}

// LoadServerInfo loads the server config file (in YAML) which contains info needed to start a server.
//
// Parameters:
//   the path to the config file
//
// Returns:
//   the `ServerInfo` struct containing the info needed to start a server
func LoadServerInfo(configFilePath string) (ret ServerInfo, err error) {
	yamlStr, err := ioutil.ReadFile(configFilePath)
	if err != nil {
		err = errors.Wrap(err, "failed to read the server config file")
		return
	}

	err = yaml.Unmarshal(yamlStr, &ret)
	if err != nil {
		err = errors.Wrap(err, "failed to parse the server config file")
		return
	}

	applyDefaults(&ret)
	err = validateServerInfo(&ret)
	return
}

func applyDefaults(info *ServerInfo) {
	if info.Fetch.TimeoutMs == 0 {
		info.Fetch.TimeoutMs = 10000
	}
	if info.Fetch.MaxBytes == 0 {
		info.Fetch.MaxBytes = 16 * 1024 * 1024
	}
	if info.Compose.TargetWidth == 0 {
		info.Compose.TargetWidth = 1280
	}
	if info.Compose.MaxPixels == 0 {
		info.Compose.MaxPixels = 64 * 1024 * 1024
	}
	if info.Compose.NumWorkers == 0 {
		info.Compose.NumWorkers = runtime.NumCPU()
	}
	if info.Cache.TTLMinutes == 0 {
		info.Cache.TTLMinutes = 24 * 60
	}
}

// validateServerInfo rejects configs the server must not start with. A bad
// config is the only fatal error class.
func validateServerInfo(info *ServerInfo) error {
	if info.Port <= 0 || info.Port > 65535 {
		return errorcode.NewConfigError("the server port must be between 1 and 65535")
	}

	if info.BaseURL == "" {
		return errorcode.NewConfigError("the base URL for shareable links must be configured")
	}
	parsed, err := url.Parse(info.BaseURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return errorcode.NewConfigError("the base URL must be an absolute URL")
	}

	if info.Fetch.TimeoutMs < 0 || info.Fetch.MaxBytes < 0 {
		return errorcode.NewConfigError("the fetch bounds must not be negative")
	}
	if info.Compose.TargetWidth < 0 || info.Compose.MaxPixels < 0 || info.Compose.NumWorkers < 0 {
		return errorcode.NewConfigError("the compose bounds must not be negative")
	}

	if info.Cache.Enabled && info.Cache.DSN == "" {
		return errorcode.NewConfigError("the resolve cache requires a DSN when enabled")
	}

	return nil
}
