package controller

import (
	"net/url"
	"strconv"
	"strings"
)

// ParameterErrorList contains a list of human-readable errors about parameters.
type ParameterErrorList []string

// AppendIfEmptyOrBlankSpaces appends the error message specified if `str` is empty or contains only blank spaces.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the trimmed string
func (pel *ParameterErrorList) AppendIfEmptyOrBlankSpaces(str string, errMsg string) string {
	if str = strings.TrimSpace(str); str == "" {
		*pel = append(*pel, errMsg)
	}

	return str
}

// AppendIfNotAbsoluteHTTPURL appends the error message specified if `str` is not an absolute http(s) URL.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the string unchanged
func (pel *ParameterErrorList) AppendIfNotAbsoluteHTTPURL(str string, errMsg string) string {
	parsed, err := url.Parse(str)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		*pel = append(*pel, errMsg)
	}

	return str
}

// AppendIfTooLong appends the error message specified if `str` exceeds `maxBytes` bytes.
//
// Parameters:
//   the string to be checked
//   the maximum length in bytes
//   the error message to append
//
// Returns:
//   the string unchanged
func (pel *ParameterErrorList) AppendIfTooLong(str string, maxBytes int, errMsg string) string {
	if len(str) > maxBytes {
		*pel = append(*pel, errMsg)
	}

	return str
}

// AppendIfNotOptionalBool appends the error message specified if `str` is neither empty nor a bool literal.
//
// Parameters:
//   the string to be checked
//   the error message to append
//
// Returns:
//   the parsed bool, or false when `str` is empty or invalid
func (pel *ParameterErrorList) AppendIfNotOptionalBool(str string, errMsg string) bool {
	if strings.TrimSpace(str) == "" {
		return false
	}

	boolResult, err := strconv.ParseBool(str)
	if err != nil {
		*pel = append(*pel, errMsg)
		return false
	}

	return boolResult
}
