package controller

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/utilbot/juxtapose/internal/service"
	"github.com/utilbot/juxtapose/internal/token"
	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// A JuxtaposeController contains a group name and a `JuxtaposeServiceInterface` instance. It also implements the interface `Controller`.
type JuxtaposeController struct {
	GroupName    string
	JuxtaposeSvc service.JuxtaposeServiceInterface
}

// GetGroupName returns the group name.
func (jc *JuxtaposeController) GetGroupName() string {
	return jc.GroupName
}

// GetEndpointMap implements part of the interface `Controller`. It returns the API endpoints and handlers which are defined and managed by JuxtaposeController.
func (jc *JuxtaposeController) GetEndpointMap() EndpointMap {
	return EndpointMap{
		urlMethodPair{"", "POST"}: []gin.HandlerFunc{jc.handleCreateLink},
		urlMethodPair{"", "GET"}:  []gin.HandlerFunc{jc.handleResolveLink},
	}
}

func (jc *JuxtaposeController) handleCreateLink(c *gin.Context) {
	leftImage := c.PostForm("leftImage")
	rightImage := c.PostForm("rightImage")
	leftLabel := c.PostForm("leftLabel")
	rightLabel := c.PostForm("rightLabel")

	// Validity check
	pel := &ParameterErrorList{}

	leftImage = pel.AppendIfEmptyOrBlankSpaces(leftImage, "The left image URL must not be empty.")
	rightImage = pel.AppendIfEmptyOrBlankSpaces(rightImage, "The right image URL must not be empty.")
	if len(*pel) == 0 {
		leftImage = pel.AppendIfNotAbsoluteHTTPURL(leftImage, "The left image URL must be an absolute http(s) URL.")
		rightImage = pel.AppendIfNotAbsoluteHTTPURL(rightImage, "The right image URL must be an absolute http(s) URL.")
	}
	leftImage = pel.AppendIfTooLong(leftImage, token.MaxRefLength, "The left image URL is too long.")
	rightImage = pel.AppendIfTooLong(rightImage, token.MaxRefLength, "The right image URL is too long.")
	leftLabel = pel.AppendIfTooLong(leftLabel, token.MaxLabelLength, "The left label is too long.")
	rightLabel = pel.AppendIfTooLong(rightLabel, token.MaxLabelLength, "The right label is too long.")

	isVertical := pel.AppendIfNotOptionalBool(c.PostForm("vertical"), "The 'vertical' parameter must be a bool.")
	withPreview := pel.AppendIfNotOptionalBool(c.PostForm("preview"), "The 'preview' parameter must be a bool.")

	// Early return if there's parameter error
	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	orientation := service.OrientationHorizontal
	if isVertical {
		orientation = service.OrientationVertical
	}

	result, err := jc.JuxtaposeSvc.CreateLink(c.Request.Context(), token.ComparisonRequest{
		LeftImageRef:  leftImage,
		RightImageRef: rightImage,
		LeftLabel:     leftLabel,
		RightLabel:    rightLabel,
	}, orientation, withPreview)

	// Check error type and generate the corresponding response
	if err == nil {
		info := LinkCreationInfo{
			URL: result.URL,
			D:   result.D,
			M:   result.M,
			O:   result.O,
		}
		if len(result.PreviewPNG) > 0 {
			info.PreviewPNG = base64.StdEncoding.EncodeToString(result.PreviewPNG)
		}
		c.JSON(http.StatusCreated, info)
		return
	}

	var inputErr *errorcode.InputError
	var fetchErr *errorcode.FetchError
	var compositorErr *errorcode.CompositorError
	switch {
	case errors.As(err, &inputErr):
		c.String(http.StatusBadRequest, inputErr.Error())
	case errors.As(err, &fetchErr):
		c.String(http.StatusBadGateway, "Failed to fetch the %v image.", fetchErr.Side)
	case errors.As(err, &compositorErr):
		// The decode detail may reflect hostile input. Log it, don't echo it.
		log.Infof("Failed to compose the preview: %v", compositorErr)
		c.String(http.StatusUnprocessableEntity, "Failed to compose the images.")
	default:
		// An unclassified error is an internal detail, not a response body.
		log.Errorf("Failed to create a link: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error.")
	}
}

func (jc *JuxtaposeController) handleResolveLink(c *gin.Context) {
	d := c.Query("d")
	m := c.Query("m")

	// Validity check
	pel := &ParameterErrorList{}
	d = pel.AppendIfEmptyOrBlankSpaces(d, "The 'd' parameter must not be empty.")
	m = pel.AppendIfEmptyOrBlankSpaces(m, "The 'm' parameter must not be empty.")

	// Early return if there's parameter error
	if len(*pel) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, pel)
		return
	}

	resolved, err := jc.JuxtaposeSvc.ResolveLink(c.Request.Context(), d, m)
	if err != nil {
		// One response for every token failure. Distinguishing a bad MAC from
		// a bad payload would hand an attacker a verification oracle.
		c.String(http.StatusBadRequest, "The link is invalid.")
		return
	}

	c.JSON(http.StatusOK, resolved)
}
