package service

import (
	"net/url"

	"github.com/utilbot/juxtapose/internal/cache"
	"github.com/utilbot/juxtapose/internal/compose"
	"github.com/utilbot/juxtapose/internal/fetch"
	"github.com/utilbot/juxtapose/internal/token"
)

// Info contains the collaborators shared by the services. All of them are
// read-only after startup and safe for concurrent use.
type Info struct {
	TokenSvc *token.Service
	Fetcher  *fetch.Fetcher
	Pool     *compose.Pool
	Cache    cache.ResolveCache
	BaseURL  *url.URL
}
