package media

import (
	"strings"
)

const (
	cloudinaryHost     = "res.cloudinary.com"
	defaultPlaceholder = "/images/placeholder.png"
)

// Resolver rewrites stored image references into the single canonical
// absolute-URL form clients consume. It is pure string classification: no
// network, no filesystem, and it never fails — malformed input still maps to
// some canonical output so a bad image string cannot break rendering.
type Resolver struct {
	baseURL     string
	placeholder string
}

// NewResolver constructs a resolver rooted at baseURL. placeholder is the
// reference substituted for absent images; when empty a built-in default is
// used. Both are normalized once so canonical output is stable.
func NewResolver(baseURL string, placeholder string) *Resolver {
	r := &Resolver{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
	placeholder = strings.TrimSpace(placeholder)
	if placeholder == "" {
		placeholder = defaultPlaceholder
	}
	r.placeholder = r.Canonicalize(placeholder)
	return r
}

// Placeholder returns the canonical reference used for absent images.
func (r *Resolver) Placeholder() string {
	return r.placeholder
}

// Canonicalize maps a raw stored reference to its canonical form. The
// classification order is fixed: empty input gets the placeholder; data URIs,
// Cloudinary URLs, and other absolute URLs pass through untouched; everything
// else is treated as a path under the configured base URL. Applying
// Canonicalize to its own output returns it unchanged — the transform runs at
// every serialization layer and must not compound prefixes.
func (r *Resolver) Canonicalize(raw string) string {
	ref := strings.TrimSpace(raw)
	switch {
	case ref == "":
		return r.placeholder
	case strings.HasPrefix(ref, "data:"):
		return ref
	case strings.Contains(ref, cloudinaryHost):
		return ref
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return r.baseURL + ref
}

// CanonicalizeAll applies Canonicalize element-wise, preserving input order
// and length; absent entries become placeholders rather than being dropped.
func (r *Resolver) CanonicalizeAll(refs []string) []string {
	if refs == nil {
		return nil
	}
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = r.Canonicalize(ref)
	}
	return out
}
