package service

import (
	"context"
	"net/url"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/utilbot/juxtapose/internal/compose"
	"github.com/utilbot/juxtapose/internal/token"
	"github.com/utilbot/juxtapose/internal/utils/idutils"
	"github.com/utilbot/juxtapose/internal/utils/timingutils"
	"github.com/utilbot/juxtapose/pkg/errorcode"
	"github.com/utilbot/juxtapose/pkg/models/juxtapose"
)

// flowStage labels the states of one request:
// idle → validating → fetching → {composing|minting} → done | failed.
// failed is terminal and always carries a taxonomy-classified reason.
type flowStage string

const (
	stageValidating flowStage = "validating"
	stageFetching   flowStage = "fetching"
	stageComposing  flowStage = "composing"
	stageMinting    flowStage = "minting"
	stageDone       flowStage = "done"
	stageFailed     flowStage = "failed"
)

// A JuxtaposeService drives the create and resolve flows. It implements the
// interface `JuxtaposeServiceInterface`.
type JuxtaposeService struct {
	ServiceInfo *Info
}

// CreateLink implements part of the interface `JuxtaposeServiceInterface`.
func (s *JuxtaposeService) CreateLink(ctx context.Context, req token.ComparisonRequest, orientation Orientation, withPreview bool) (*juxtapose.CreateResult, error) {
	requestID, err := idutils.GenerateSnowflakeId()
	if err != nil {
		requestID = "unknown"
	}

	logger := log.WithFields(log.Fields{"requestId": requestID, "flow": "create"})

	logger.WithField("stage", stageValidating).Debug("Validating the comparison request.")
	if err := token.ValidateRequest(req); err != nil {
		logger.WithField("stage", stageFailed).Infof("Rejected the comparison request: %v", err)
		return nil, err
	}

	logger.WithField("stage", stageFetching).Debug("Fetching both images.")
	leftBytes, rightBytes, err := s.fetchBoth(ctx, req)
	if err != nil {
		logger.WithField("stage", stageFailed).Infof("Failed to fetch the images: %v", err)
		return nil, err
	}

	var previewPNG []byte
	if withPreview {
		logger.WithField("stage", stageComposing).Debug("Composing the confirmation preview.")
		previewPNG, err = s.composePreview(ctx, req, orientation, leftBytes, rightBytes)
		if err != nil {
			logger.WithField("stage", stageFailed).Warnf("Failed to compose the preview: %v", err)
			return nil, err
		}
	}

	logger.WithField("stage", stageMinting).Debug("Minting the token.")
	d, m, err := s.ServiceInfo.TokenSvc.Mint(req)
	if err != nil {
		logger.WithField("stage", stageFailed).Warnf("Failed to mint the token: %v", err)
		return nil, err
	}

	shareableURL := *s.ServiceInfo.BaseURL
	query := url.Values{}
	query.Set("d", d)
	query.Set("m", m)
	query.Set("o", string(orientation))
	shareableURL.RawQuery = query.Encode()

	logger.WithField("stage", stageDone).Info("Minted a juxtapose link.")

	return &juxtapose.CreateResult{
		URL:        shareableURL.String(),
		D:          d,
		M:          m,
		O:          string(orientation),
		PreviewPNG: previewPNG,
	}, nil
}

// fetchBoth runs the two fetches concurrently and joins them fail-fast: the
// first failure cancels the sibling fetch so no bandwidth is wasted on a
// request that already failed.
func (s *JuxtaposeService) fetchBoth(ctx context.Context, req token.ComparisonRequest) ([]byte, []byte, error) {
	defer timingutils.GetDeferrableTimingLogger("Fetching both images took")()

	g, gctx := errgroup.WithContext(ctx)

	var leftBytes, rightBytes []byte

	g.Go(func() error {
		data, _, err := s.ServiceInfo.Fetcher.Fetch(gctx, errorcode.FetchSideLeft, req.LeftImageRef)
		if err != nil {
			return err
		}

		leftBytes = data
		return nil
	})

	g.Go(func() error {
		data, _, err := s.ServiceInfo.Fetcher.Fetch(gctx, errorcode.FetchSideRight, req.RightImageRef)
		if err != nil {
			return err
		}

		rightBytes = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return leftBytes, rightBytes, nil
}

func (s *JuxtaposeService) composePreview(ctx context.Context, req token.ComparisonRequest, orientation Orientation, leftBytes, rightBytes []byte) ([]byte, error) {
	defer timingutils.GetDeferrableTimingLogger("Composing the preview took")()

	rendered, err := s.ServiceInfo.Pool.Compose(ctx, leftBytes, rightBytes, req.LeftLabel, req.RightLabel)
	if err != nil {
		return nil, err
	}

	return compose.EncodePNG(compose.Overlay(rendered, orientation == OrientationVertical))
}

// ResolveLink implements part of the interface `JuxtaposeServiceInterface`.
func (s *JuxtaposeService) ResolveLink(ctx context.Context, d string, m string) (*juxtapose.ResolvedComparison, error) {
	defer timingutils.GetDeferrableTimingLogger("Resolving the link took")()

	req, err := s.ServiceInfo.TokenSvc.Verify(d, m)
	if err != nil {
		return nil, err
	}

	// Cache failures degrade to misses; they must never fail a resolve whose
	// token already verified.
	if cached, err := s.ServiceInfo.Cache.Get(ctx, d); err == nil {
		return cached, nil
	} else if err != errorcode.ErrorNotFound {
		log.Debugf("Failed to read from the resolve cache: %v", err)
	}

	resolved := &juxtapose.ResolvedComparison{
		LeftImageURL:    req.LeftImageRef,
		RightImageURL:   req.RightImageRef,
		LeftImageLabel:  req.LeftLabel,
		RightImageLabel: req.RightLabel,
	}

	if err := s.ServiceInfo.Cache.Put(ctx, d, resolved); err != nil {
		log.Warnf("Failed to write to the resolve cache: %v", err)
	}

	return resolved, nil
}
