package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/utilbot/juxtapose/internal/preview"
	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// A PreviewController contains a group name and a `preview.Renderer` instance. It also implements the interface `Controller`.
type PreviewController struct {
	GroupName string
	Renderer  *preview.Renderer
}

// GetGroupName returns the group name.
func (pc *PreviewController) GetGroupName() string {
	return pc.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by PreviewController.
func (pc *PreviewController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "GET"}: []gin.HandlerFunc{pc.handleRenderPreview},
	}
}

func (pc *PreviewController) handleRenderPreview(c *gin.Context) {
	rawURL := c.Query("url")

	// Validity check
	pel := &ParameterErrorList{}
	rawURL = pel.AppendIfEmptyOrBlankSpaces(rawURL, "The 'url' parameter must not be empty.")

	// Early return if there's parameter error
	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	ref, err := preview.DetectReference(rawURL)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	rendered, err := pc.Renderer.Render(c.Request.Context(), ref)

	// Check error type and generate the corresponding response
	if err == nil {
		c.JSON(http.StatusOK, rendered)
		return
	}

	var inputErr *errorcode.InputError
	var fetchErr *errorcode.FetchError
	switch {
	case errors.As(err, &inputErr):
		c.String(http.StatusBadRequest, inputErr.Error())
	case errors.As(err, &fetchErr):
		log.Infof("Failed to fetch the source file for a preview: %v", err)
		c.String(http.StatusBadGateway, "Failed to fetch the source file.")
	default:
		c.String(http.StatusInternalServerError, err.Error())
	}
}
