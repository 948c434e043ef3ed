package appinit

import (
	"io/ioutil"
	"os"
	"strings"

	errors "github.com/pkg/errors"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// MasterKeyEnvVar names the environment variable the master key material is
// read from. It takes precedence over the key file named in the config.
const MasterKeyEnvVar = "JUXTAPOSE_KEY_MATERIAL"

// LoadMasterKeyMaterial loads the raw master key material, preferring the
// environment variable over the key file. The material is never logged.
//
// Parameters:
//   the path to the key file from the server config ("" if not configured)
//
// Returns:
//   the raw key material
func LoadMasterKeyMaterial(keyFilePath string) ([]byte, error) {
	if material := os.Getenv(MasterKeyEnvVar); material != "" {
		return []byte(material), nil
	}

	if keyFilePath == "" {
		return nil, errorcode.NewConfigError("no master key material: set " + MasterKeyEnvVar + " or configure a key file")
	}

	material, err := ioutil.ReadFile(keyFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the master key file")
	}

	material = []byte(strings.TrimRight(string(material), "\r\n"))
	if len(material) == 0 {
		return nil, errorcode.NewConfigError("the master key file is empty")
	}

	return material, nil
}
