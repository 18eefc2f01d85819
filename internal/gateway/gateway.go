// Package gateway implements the three operations the HTTP layer exposes:
// upload grants, listing with read grants, and mediated delete.
package gateway

import (
	"context"
	"time"

	"github.com/Luiggi-Git/carocha-functions/internal/credential"
	"github.com/Luiggi-Git/carocha-functions/internal/domain"
	"github.com/Luiggi-Git/carocha-functions/internal/grant"
	"github.com/Luiggi-Git/carocha-functions/internal/policy"
	"github.com/Luiggi-Git/carocha-functions/internal/storage"
	"github.com/Luiggi-Git/carocha-functions/internal/sts"
)

// Options wires a Service. Signer is optional; by default a SAS signer is
// built from Credential.
type Options struct {
	Credential        credential.StoreCredential
	Container         string
	Window            time.Duration
	ClockSkewBuffer   time.Duration
	NoClockSkewBuffer bool
	ListConcurrency   int
	Clock             policy.Clock
	Store             storage.ObjectStore
	Signer            sts.Signer
}

// IssuedGrant is a single delegated URL and its expiry.
type IssuedGrant struct {
	URL       grant.DelegatedURL
	ExpiresOn time.Time
}

// Listing is the result of ListWithReadGrants.
type Listing struct {
	Items     []grant.ReadGrant
	ExpiresOn time.Time
}

// Service holds the per-process collaborators. It has no mutable state and
// is safe for concurrent use.
type Service struct {
	policy   *policy.Policy
	issuer   *sts.Issuer
	composer *grant.Composer
	batch    *grant.Batch
	store    storage.ObjectStore
}

// New validates the credential and builds a Service. An invalid credential is
// a CONFIG_ERROR and no collaborator is ever called.
func New(opts Options) (*Service, error) {
	cred := opts.Credential
	if cred.Identity == "" || cred.SecretKey == "" {
		return nil, domain.NewConfigError("connection string", "missing account name or key")
	}
	if opts.Store == nil {
		return nil, domain.NewConfigError("storage", "object store is required")
	}
	signer := opts.Signer
	if signer == nil {
		s, err := sts.NewSASSigner(cred)
		if err != nil {
			return nil, err
		}
		signer = s
	}

	p := policy.New(policy.Options{
		Container:         opts.Container,
		Window:            opts.Window,
		ClockSkewBuffer:   opts.ClockSkewBuffer,
		NoClockSkewBuffer: opts.NoClockSkewBuffer,
		Clock:             opts.Clock,
	})
	issuer := sts.NewIssuer(signer)
	composer := grant.NewComposer(cred.ServiceURL())

	return &Service{
		policy:   p,
		issuer:   issuer,
		composer: composer,
		batch:    grant.NewBatch(p, issuer, composer, opts.ListConcurrency),
		store:    opts.Store,
	}, nil
}

// Container is the container every grant is scoped to.
func (s *Service) Container() string {
	return s.policy.Container()
}

// IssueUploadGrant returns a create+write URL for filename. No store call is
// made; the caller uploads straight to the blob service.
func (s *Service) IssueUploadGrant(ctx context.Context, filename string) (IssuedGrant, error) {
	return s.issue(policy.KindUpload, "filename", filename)
}

// IssueReadGrant returns a read-only URL for name.
func (s *Service) IssueReadGrant(ctx context.Context, name string) (IssuedGrant, error) {
	return s.issue(policy.KindRead, "name", name)
}

func (s *Service) issue(kind policy.Kind, field, name string) (IssuedGrant, error) {
	if name == "" {
		return IssuedGrant{}, domain.NewInvalidInputError(field, "required")
	}
	access, err := s.policy.Grant(kind, name)
	if err != nil {
		return IssuedGrant{}, err
	}
	d, err := s.issuer.Issue(access)
	if err != nil {
		return IssuedGrant{}, err
	}
	return IssuedGrant{
		URL:       s.composer.Compose(access.ContainerName, access.ObjectName, d),
		ExpiresOn: access.ValidUntil,
	}, nil
}

// ListWithReadGrants lists the container and attaches a read URL to every
// object.
func (s *Service) ListWithReadGrants(ctx context.Context) (Listing, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return Listing{}, domain.NewCollaboratorError("list objects", err)
	}
	items, expiresOn, err := s.batch.ReadGrants(ctx, entries)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Items: items, ExpiresOn: expiresOn}, nil
}

const readinessProbe = ".photogate-readyz"

// Ready probes the store with the service credential. A missing probe object
// is fine; only transport or authorization failures make the service unready.
func (s *Service) Ready(ctx context.Context) error {
	if _, err := s.store.Exists(ctx, readinessProbe); err != nil {
		return domain.NewCollaboratorError("readiness probe", err)
	}
	return nil
}
