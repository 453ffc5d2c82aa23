package actor

import (
	"strings"
)

// GuardianKind identifies which root an ActorPath descends from.
type GuardianKind int

const (
	GuardianUser GuardianKind = iota
	GuardianSystem
)

func (g GuardianKind) String() string {
	if g == GuardianSystem {
		return "system"
	}
	return "user"
}

// Path is the canonical, immutable address of an actor (spec §3 ActorPath):
// scheme, system name, optional authority (host:port), guardian root, an
// ordered list of segments, and an optional uid disambiguating identical
// paths reused over time.
type Path struct {
	Scheme     string
	System     string
	Authority  string // host:port, empty for local paths
	Guardian   GuardianKind
	Segments   []string
	UID        uint32
	hasUID     bool
}

// NewRootPath builds the path for a root guardian, e.g. "proto://sys/user".
func NewRootPath(scheme, system string, guardian GuardianKind) Path {
	return Path{Scheme: scheme, System: system, Guardian: guardian}
}

// WithChild returns a new Path with segment appended. segment must be
// non-empty and must not contain '/' or the reserved characters '?' '#'.
func (p Path) WithChild(segment string) (Path, error) {
	if err := validateSegment(segment); err != nil {
		return Path{}, err
	}
	next := make([]string, len(p.Segments)+1)
	copy(next, p.Segments)
	next[len(p.Segments)] = segment
	return Path{
		Scheme:    p.Scheme,
		System:    p.System,
		Authority: p.Authority,
		Guardian:  p.Guardian,
		Segments:  next,
	}, nil
}

// WithUID returns a copy of p carrying the given UID.
func (p Path) WithUID(uid uint32) Path {
	p.UID = uid
	p.hasUID = true
	return p
}

// HasUID reports whether a UID was set.
func (p Path) HasUID() bool { return p.hasUID }

func validateSegment(segment string) error {
	if segment == "" {
		return ErrInvalidPathSegment
	}
	if strings.ContainsAny(segment, "/?#") {
		return ErrInvalidPathSegment
	}
	return nil
}

// String renders "scheme://system@authority/guardian/seg1/seg2#uid".
func (p Path) String() string {
	var b strings.Builder
	if p.Scheme != "" {
		b.WriteString(p.Scheme)
		b.WriteString("://")
	}
	b.WriteString(p.System)
	if p.Authority != "" {
		b.WriteString("@")
		b.WriteString(p.Authority)
	}
	b.WriteString("/")
	b.WriteString(p.Guardian.String())
	for _, s := range p.Segments {
		b.WriteString("/")
		b.WriteString(s)
	}
	if p.hasUID {
		b.WriteString("#")
		b.WriteString(itoa(p.UID))
	}
	return b.String()
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	digits := [10]byte{}
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[i:])
}
