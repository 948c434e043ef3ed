package preview

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

var commitSHARegex = regexp.MustCompile(`^[0-9a-f]{40}$`)

// resolveGitHubFile maps a github.com blob/blame URL to its raw content on
// raw.githubusercontent.com and builds the metadata header.
func (r *Renderer) resolveGitHubFile(ctx context.Context, rawURL string) (*sourceFile, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errorcode.NewInputError("the source-file URL is malformed")
	}

	segments := splitPathSegments(parsed.Path)
	if len(segments) < 5 || (segments[2] != "blob" && segments[2] != "blame") {
		return nil, errorcode.NewInputError("the source-file URL is malformed")
	}

	author, repository, ref := segments[0], segments[1], segments[3]
	filePath := strings.Join(segments[4:], "/")

	rawFileURL := &url.URL{
		Scheme: "https",
		Host:   "raw.githubusercontent.com",
		Path:   "/" + strings.Join([]string{author, repository, ref, filePath}, "/"),
	}

	rawContent, err := r.fetchRawContent(ctx, rawFileURL.String())
	if err != nil {
		return nil, err
	}

	// Full commit hashes make an unwieldy header. Show the short form.
	displayRef := ref
	if commitSHARegex.MatchString(ref) {
		displayRef = ref[:7]
	}

	return &sourceFile{
		metadata:      fmt.Sprintf("%v/%v (on %v)\n%v", author, repository, displayRef, filePath),
		fileExtension: fileExtensionOf(segments[len(segments)-1]),
		fragment:      parsed.Fragment,
		rawContent:    rawContent,
	}, nil
}

func splitPathSegments(urlPath string) []string {
	return strings.Split(strings.Trim(urlPath, "/"), "/")
}

// fileExtensionOf returns the extension of the file name without the dot, or
// "" when it has none.
func fileExtensionOf(fileName string) string {
	ext := path.Ext(fileName)
	if ext == "" {
		return ""
	}

	return strings.TrimPrefix(ext, ".")
}
