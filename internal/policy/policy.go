// Package policy decides the scope and validity window of an access grant.
package policy

import (
	"strings"
	"time"

	"github.com/Luiggi-Git/carocha-functions/internal/domain"
)

const (
	DefaultContainer       = "photos"
	DefaultWindow          = 10 * time.Minute
	DefaultClockSkewBuffer = 60 * time.Second
)

// Kind is the operation a grant is requested for.
type Kind string

const (
	KindUpload Kind = "upload"
	KindRead   Kind = "read"
)

// Permission is a single capability carried by a grant.
type Permission string

const (
	PermissionCreate Permission = "create"
	PermissionWrite  Permission = "write"
	PermissionRead   Permission = "read"
)

// Permissions is a set of capabilities.
type Permissions struct {
	Create bool
	Write  bool
	Read   bool
}

// List returns the permissions in a stable order.
func (p Permissions) List() []Permission {
	var out []Permission
	if p.Create {
		out = append(out, PermissionCreate)
	}
	if p.Write {
		out = append(out, PermissionWrite)
	}
	if p.Read {
		out = append(out, PermissionRead)
	}
	return out
}

// PermissionsFor maps a grant kind to its permission set.
func PermissionsFor(kind Kind) (Permissions, error) {
	switch kind {
	case KindUpload:
		return Permissions{Create: true, Write: true}, nil
	case KindRead:
		return Permissions{Read: true}, nil
	default:
		return Permissions{}, domain.NewInvalidInputError("grant kind", "unsupported kind "+string(kind))
	}
}

// AccessGrant is the scope and window a signed descriptor is issued for.
type AccessGrant struct {
	ContainerName string
	ObjectName    string
	Permissions   Permissions
	ValidFrom     time.Time
	ValidUntil    time.Time
}

// Clock abstracts time so windows can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns UTC wall time truncated to whole seconds, the
// precision of SAS timestamps.
var SystemClock Clock = ClockFunc(func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
})

// Options configures a Policy. An empty Container, a non-positive Window or a
// non-positive ClockSkewBuffer selects the default; a nil Clock selects
// SystemClock. NoClockSkewBuffer issues grants that start at the issuance
// instant.
type Options struct {
	Container         string
	Window            time.Duration
	ClockSkewBuffer   time.Duration
	NoClockSkewBuffer bool
	Clock             Clock
}

// Policy produces access grants for a single container.
type Policy struct {
	container string
	window    time.Duration
	skew      time.Duration
	clock     Clock
}

// New creates a Policy.
func New(opts Options) *Policy {
	p := &Policy{
		container: strings.TrimSpace(opts.Container),
		window:    opts.Window,
		skew:      opts.ClockSkewBuffer,
		clock:     opts.Clock,
	}
	if p.container == "" {
		p.container = DefaultContainer
	}
	if p.window <= 0 {
		p.window = DefaultWindow
	}
	switch {
	case opts.NoClockSkewBuffer:
		p.skew = 0
	case p.skew <= 0:
		p.skew = DefaultClockSkewBuffer
	}
	if p.clock == nil {
		p.clock = SystemClock
	}
	return p
}

// Container is the container grants are scoped to.
func (p *Policy) Container() string { return p.container }

// Window is the validity duration counted from issuance.
func (p *Policy) Window() time.Duration { return p.window }

// ClockSkewBuffer is how far ValidFrom is backdated.
func (p *Policy) ClockSkewBuffer() time.Duration { return p.skew }

// Grant builds the grant for kind on objectName at the current instant.
func (p *Policy) Grant(kind Kind, objectName string) (AccessGrant, error) {
	return p.GrantAt(kind, objectName, p.clock.Now())
}

// GrantAt builds the grant for an explicit issuance instant. Batches use it to
// share one expiry across every item.
func (p *Policy) GrantAt(kind Kind, objectName string, issuedAt time.Time) (AccessGrant, error) {
	if objectName == "" {
		return AccessGrant{}, domain.NewInvalidInputError("object name", "must not be empty")
	}
	perms, err := PermissionsFor(kind)
	if err != nil {
		return AccessGrant{}, err
	}
	issuedAt = issuedAt.UTC()
	return AccessGrant{
		ContainerName: p.container,
		ObjectName:    objectName,
		Permissions:   perms,
		ValidFrom:     issuedAt.Add(-p.skew),
		ValidUntil:    issuedAt.Add(p.window),
	}, nil
}

// Now reads the policy clock.
func (p *Policy) Now() time.Time {
	return p.clock.Now().UTC()
}
