package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateMemberRoster(ctx context.Context, data RosterData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateMemberRoster(ctx context.Context, data RosterData) (io.Reader, error) {
	return nil, nil
}
