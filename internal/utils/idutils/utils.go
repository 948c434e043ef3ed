package idutils

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// GenerateSnowflakeId generates a unique ID used to correlate the log lines
// of one request.
func GenerateSnowflakeId() (string, error) {
	sfNode, err := snowflake.NewNode(1)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate an ID")
	}

	id := sfNode.Generate().String()
	return id, nil
}
