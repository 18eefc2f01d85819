// Package grant assembles delegated-access URLs from signed descriptors.
package grant

import (
	"net/url"
	"strings"

	"github.com/Luiggi-Git/carocha-functions/internal/sts"
)

// DelegatedURL is a resource URL plus the signed descriptor that authorizes it.
type DelegatedURL struct {
	BaseResourceURL  string
	SignedDescriptor string
}

// String joins the two halves into a caller-usable URL.
func (d DelegatedURL) String() string {
	return d.BaseResourceURL + "?" + d.SignedDescriptor
}

// Composer builds URLs under one blob service endpoint.
type Composer struct {
	serviceURL string
}

// NewComposer creates a Composer for serviceURL, e.g.
// https://{account}.blob.core.windows.net.
func NewComposer(serviceURL string) *Composer {
	return &Composer{serviceURL: strings.TrimRight(serviceURL, "/")}
}

// Compose percent-encodes objectName as a single path segment, so names
// containing '/' stay addressable as one blob.
func (c *Composer) Compose(containerName, objectName string, d sts.SignedDescriptor) DelegatedURL {
	return DelegatedURL{
		BaseResourceURL:  c.serviceURL + "/" + url.PathEscape(containerName) + "/" + url.PathEscape(objectName),
		SignedDescriptor: d.Query,
	}
}
