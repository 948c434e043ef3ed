// Package preview detects references to externally hosted source files in
// free text and renders inline text previews for the referenced line range.
// Supported hosts are GitHub repository files (blob/blame URLs with a line
// fragment) and Gists (file anchors).
package preview

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/utilbot/juxtapose/internal/fetch"
	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// maxRawBytes caps the raw file download. Source files larger than this are
// not worth previewing.
const maxRawBytes = 4 * 1024 * 1024

// maxReferences caps how many references one text yields.
const maxReferences = 3

var (
	githubFileURLRegex = regexp.MustCompile(`https://github\.com(?:/[^/\s]+){2}/(?:blob|blame)(?:/[^/\s]+)+#[^/\s]+`)
	gistURLRegex       = regexp.MustCompile(`https://gist\.github\.com(?:/[^/\s]+){2}#file\-[^\s]+`)
	lineNumberRegex    = regexp.MustCompile(`L(\d+)`)
)

// ReferenceKind names the source host a reference points at.
type ReferenceKind string

const (
	KindGitHubFile ReferenceKind = "githubFile"
	KindGist       ReferenceKind = "gist"
)

// A Reference is one detected source-file URL within a text.
type Reference struct {
	URL      string
	Kind     ReferenceKind
	position int
}

// A Preview is the rendered result of one reference: a metadata header plus
// the selected content with a line-number gutter.
type Preview struct {
	SourceURL     string `json:"source_url"`
	Metadata      string `json:"metadata"`
	FileExtension string `json:"file_extension,omitempty"`
	Content       string `json:"content"`
}

// FindReferences scans `text` for supported source-file URLs, ordered by
// their position in the text and capped at maxReferences.
func FindReferences(text string) []Reference {
	var refs []Reference

	for _, match := range githubFileURLRegex.FindAllStringIndex(text, -1) {
		refs = append(refs, Reference{URL: text[match[0]:match[1]], Kind: KindGitHubFile, position: match[0]})
	}
	for _, match := range gistURLRegex.FindAllStringIndex(text, -1) {
		refs = append(refs, Reference{URL: text[match[0]:match[1]], Kind: KindGist, position: match[0]})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].position < refs[j].position })

	if len(refs) > maxReferences {
		refs = refs[:maxReferences]
	}

	return refs
}

// DetectReference classifies a single URL the way FindReferences would.
func DetectReference(rawURL string) (Reference, error) {
	refs := FindReferences(rawURL)
	if len(refs) == 0 || refs[0].URL != rawURL {
		return Reference{}, errorcode.NewInputError("the URL is not a supported source-file reference")
	}

	return refs[0], nil
}

// A Renderer turns references into previews. It shares the bounded fetcher
// with the image pipeline.
type Renderer struct {
	Fetcher *fetch.Fetcher
}

// Render resolves the reference against its host and renders the line range
// named by the URL fragment.
func (r *Renderer) Render(ctx context.Context, ref Reference) (*Preview, error) {
	var (
		source *sourceFile
		err    error
	)

	switch ref.Kind {
	case KindGitHubFile:
		source, err = r.resolveGitHubFile(ctx, ref.URL)
	case KindGist:
		source, err = r.resolveGist(ctx, ref.URL)
	default:
		return nil, errorcode.NewInputError("the URL is not a supported source-file reference")
	}
	if err != nil {
		return nil, err
	}

	content, err := renderLineRange(source.rawContent, source.fragment)
	if err != nil {
		return nil, err
	}

	return &Preview{
		SourceURL:     ref.URL,
		Metadata:      source.metadata,
		FileExtension: source.fileExtension,
		Content:       content,
	}, nil
}

// sourceFile is the host-independent shape both resolvers produce.
type sourceFile struct {
	metadata      string
	fileExtension string
	fragment      string
	rawContent    string
}

// fragmentLineRange extracts the selected line range from a URL fragment
// like "L10" or "L10-L20". The range is inclusive and 1-based.
func fragmentLineRange(fragment string) (int, int, error) {
	matches := lineNumberRegex.FindAllStringSubmatch(fragment, -1)
	if len(matches) == 0 {
		return 0, 0, errorcode.NewInputError("the URL fragment selects no lines")
	}

	top, bottom := 0, 0
	for _, match := range matches {
		number, err := strconv.Atoi(match[1])
		if err != nil || number < 1 {
			continue
		}

		if top == 0 || number < top {
			top = number
		}
		if number > bottom {
			bottom = number
		}
	}

	if top == 0 {
		return 0, 0, errorcode.NewInputError("the URL fragment selects no lines")
	}

	return top, bottom, nil
}

func (r *Renderer) fetchRawContent(ctx context.Context, rawURL string) (string, error) {
	data, err := r.Fetcher.FetchRaw(ctx, rawURL, maxRawBytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch the raw file content")
	}

	return string(data), nil
}
