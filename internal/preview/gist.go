package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

var gistFileNameRegex = regexp.MustCompile(`file-([^L]+)`)

// gistMetadata is the shape of the public `<gist URL>.json` endpoint, reduced
// to the fields the preview needs.
type gistMetadata struct {
	Description string   `json:"description"`
	Files       []string `json:"files"`
	Owner       string   `json:"owner"`
}

// resolveGist resolves a gist.github.com file anchor: the `.json` metadata
// endpoint maps the mangled anchor back to the real file name, which then
// addresses the raw content.
func (r *Renderer) resolveGist(ctx context.Context, rawURL string) (*sourceFile, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errorcode.NewInputError("the source-file URL is malformed")
	}

	fileNameMatch := gistFileNameRegex.FindStringSubmatch(parsed.Fragment)
	if fileNameMatch == nil {
		return nil, errorcode.NewInputError("the URL names no gist file")
	}
	wantedFileName := normalizeGistFileName(fileNameMatch[1])

	metadataURL := *parsed
	metadataURL.Fragment = ""
	metadataURL.Path += ".json"

	metadataBytes, err := r.Fetcher.FetchRaw(ctx, metadataURL.String(), maxRawBytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch the gist metadata")
	}

	var metadata gistMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, errors.Wrap(err, "failed to parse the gist metadata")
	}

	// The anchor carries a normalized rendition of the file name. Match it
	// against the real names from the metadata.
	var selectedFileName string
	for _, fileName := range metadata.Files {
		if normalizeGistFileName(fileName) == wantedFileName {
			selectedFileName = fileName
			break
		}
	}
	if selectedFileName == "" {
		return nil, errorcode.NewInputError("the named file is not part of the gist")
	}

	rawFileURL := *parsed
	rawFileURL.Fragment = ""
	rawFileURL.Path = strings.TrimSuffix(rawFileURL.Path, "/") + "/raw/" + url.PathEscape(selectedFileName)

	rawContent, err := r.fetchRawContent(ctx, rawFileURL.String())
	if err != nil {
		return nil, err
	}

	metadataHeader := fmt.Sprintf("%v\n%v", metadata.Owner, selectedFileName)
	if metadata.Description != "" {
		metadataHeader += "\n> " + truncateString(metadata.Description, 128)
	}

	return &sourceFile{
		metadata:      metadataHeader,
		fileExtension: fileExtensionOf(selectedFileName),
		fragment:      parsed.Fragment,
		rawContent:    rawContent,
	}, nil
}

// normalizeGistFileName reduces a file name to lowercase alphanumerics. The
// anchor in a gist URL mangles the real file name this way.
func normalizeGistFileName(fileName string) string {
	var builder strings.Builder
	for _, character := range fileName {
		if unicode.IsLetter(character) || unicode.IsDigit(character) {
			builder.WriteRune(unicode.ToLower(character))
		}
	}

	return builder.String()
}

func truncateString(value string, maxLength int) string {
	if len(value) <= maxLength {
		return value
	}

	if maxLength <= 0 {
		return ""
	}

	if maxLength <= 3 {
		return value[:maxLength]
	}

	return value[:maxLength-3] + "..."
}
