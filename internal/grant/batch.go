package grant

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Luiggi-Git/carocha-functions/internal/policy"
	"github.com/Luiggi-Git/carocha-functions/internal/storage"
	"github.com/Luiggi-Git/carocha-functions/internal/sts"
)

const DefaultMaxConcurrency = 16

// ReadGrant is a listing entry with its own read-scoped URL.
type ReadGrant struct {
	Name string
	Size int64
	URL  DelegatedURL
}

// Batch issues read grants for a whole listing.
type Batch struct {
	policy         *policy.Policy
	issuer         *sts.Issuer
	composer       *Composer
	maxConcurrency int
}

// NewBatch creates a Batch. maxConcurrency <= 0 selects DefaultMaxConcurrency.
func NewBatch(p *policy.Policy, issuer *sts.Issuer, composer *Composer, maxConcurrency int) *Batch {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Batch{policy: p, issuer: issuer, composer: composer, maxConcurrency: maxConcurrency}
}

// ReadGrants signs one independent read descriptor per entry. Every grant in
// the batch shares the same issuance instant, so they all expire at the
// returned time. Output order matches entries. The first signing failure
// fails the whole batch.
func (b *Batch) ReadGrants(ctx context.Context, entries []storage.ObjectInfo) ([]ReadGrant, time.Time, error) {
	issuedAt := b.policy.Now()
	expiresOn := issuedAt.Add(b.policy.Window())

	out := make([]ReadGrant, len(entries))
	if len(entries) == 0 {
		return out, expiresOn, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(entries), b.maxConcurrency))
	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			access, err := b.policy.GrantAt(policy.KindRead, entry.Name, issuedAt)
			if err != nil {
				return err
			}
			d, err := b.issuer.Issue(access)
			if err != nil {
				return err
			}
			out[i] = ReadGrant{
				Name: entry.Name,
				Size: entry.Size,
				URL:  b.composer.Compose(access.ContainerName, access.ObjectName, d),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, time.Time{}, err
	}
	return out, expiresOn, nil
}
