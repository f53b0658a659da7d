package service

import (
	"context"
	"fmt"
	"time"

	"fieldserve-backend/internal/domains/booking/repository"
)

// ReferenceGenerator produces the human-readable booking reference
// <PREFIX>-<year>-<number>. The number comes from a database sequence, so
// references are collision-free by construction; it is zero-padded to 4
// digits and simply grows wider past 9999.
type ReferenceGenerator struct {
	prefix string
	repo   repository.BookingRepository
	now    func() time.Time
}

func NewReferenceGenerator(prefix string, repo repository.BookingRepository) *ReferenceGenerator {
	return &ReferenceGenerator{
		prefix: prefix,
		repo:   repo,
		now:    time.Now,
	}
}

func (g *ReferenceGenerator) Generate(ctx context.Context) (string, error) {
	seq, err := g.repo.NextReferenceSeq(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%04d", g.prefix, g.now().Year(), seq), nil
}
