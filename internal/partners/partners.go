// Package partners loads the trusted partners section.
package partners

import (
	"context"

	"golang.org/x/sync/errgroup"

	"supplier-portal/internal/models"
)

type API interface {
	Partnerships(ctx context.Context) ([]models.Partnership, error)
	PartnerStatistics(ctx context.Context) (*models.PartnerStatistics, error)
}

type Section struct {
	Partners   []models.Partnership
	Statistics models.PartnerStatistics
}

// Load fetches partnerships and statistics concurrently. Both must succeed;
// the first failure cancels the other request.
func Load(ctx context.Context, api API) (*Section, error) {
	var (
		list  []models.Partnership
		stats *models.PartnerStatistics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = api.Partnerships(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = api.PartnerStatistics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Section{Partners: list}
	if s.Partners == nil {
		s.Partners = []models.Partnership{}
	}
	if stats != nil {
		s.Statistics = *stats
	}
	return s, nil
}
