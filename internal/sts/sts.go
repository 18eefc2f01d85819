// Package sts issues short-lived signed descriptors for access grants.
package sts

import (
	"github.com/Luiggi-Git/carocha-functions/internal/domain"
	"github.com/Luiggi-Git/carocha-functions/internal/policy"
)

// Signer turns a grant into a URL-safe signed query string. It must be safe
// for concurrent use.
type Signer interface {
	Sign(grant policy.AccessGrant) (string, error)
}

// SignedDescriptor is the signed query string together with the grant it
// was issued for.
type SignedDescriptor struct {
	Grant policy.AccessGrant
	Query string
}

// Issuer produces signed descriptors. It never sees the secret key directly;
// that stays inside the Signer.
type Issuer struct {
	signer Signer
}

// NewIssuer creates an Issuer backed by signer.
func NewIssuer(signer Signer) *Issuer {
	return &Issuer{signer: signer}
}

// Issue signs grant.
func (i *Issuer) Issue(grant policy.AccessGrant) (SignedDescriptor, error) {
	if grant.ObjectName == "" {
		return SignedDescriptor{}, domain.NewInvalidInputError("object name", "must not be empty")
	}
	if !grant.ValidFrom.Before(grant.ValidUntil) {
		return SignedDescriptor{}, domain.NewInvalidInputError("validity window", "start must be before expiry")
	}
	q, err := i.signer.Sign(grant)
	if err != nil {
		return SignedDescriptor{}, domain.NewCollaboratorError("sign access grant", err)
	}
	return SignedDescriptor{Grant: grant, Query: q}, nil
}
