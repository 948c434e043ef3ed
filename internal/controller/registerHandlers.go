package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type urlMethodPair struct {
	urlSuffix, method string
}

// EndpointMap is a map containing endpoints and the corresponding handlers that are defined and managed by a controller.
//
// Each entry in the map is organized in the following manner.
//   (urlSuffix, method): handler_function_list
// Thus it takes a URL suffix and an HTTP method as the key to perform a lookup.
type EndpointMap map[urlMethodPair][]gin.HandlerFunc

// A Controller must contain an endpoint map.
type Controller interface {
	GetGroupName() string
	GetEndpointMap() EndpointMap
}

// RegisterHandlers registers the endpoint handlers in the controller to the router group.
func RegisterHandlers(r *gin.RouterGroup, c Controller) error {
	group := r.Group(c.GetGroupName())

	for pair, handlers := range c.GetEndpointMap() {
		switch strings.ToUpper(pair.method) {
		case http.MethodGet:
			group.GET(pair.urlSuffix, handlers...)
		case http.MethodPost:
			group.POST(pair.urlSuffix, handlers...)
		case http.MethodPut:
			group.PUT(pair.urlSuffix, handlers...)
		case http.MethodDelete:
			group.DELETE(pair.urlSuffix, handlers...)
		case http.MethodOptions:
			group.OPTIONS(pair.urlSuffix, handlers...)
		default:
			return errors.Errorf("unsupported HTTP method '%v'", pair.method)
		}
	}

	return nil
}
