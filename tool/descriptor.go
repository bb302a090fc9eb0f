// Package tool implements the capability registry for the SEA assistant.
// It maps tool-category names to typed descriptors of what each category
// supports, and exposes lookup, enumeration, requirement validation, and an
// execution seam for collaborators that supply real dispatch behavior.
package tool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags the descriptor variant for a tool category. Each category is
// fixed to exactly one kind for the lifetime of the process.
type Kind string

const (
	KindCatalog     Kind = "catalog"
	KindEngine      Kind = "engine"
	KindFormat      Kind = "format"
	KindOperational Kind = "operational"
	KindTracking    Kind = "tracking"
)

// ParseKind converts a string to a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindCatalog:
		return KindCatalog, nil
	case KindEngine:
		return KindEngine, nil
	case KindFormat:
		return KindFormat, nil
	case KindOperational:
		return KindOperational, nil
	case KindTracking:
		return KindTracking, nil
	default:
		return "", fmt.Errorf("tool: unsupported descriptor kind %q", value)
	}
}

// CatalogSpec describes language-oriented categories. Languages is a set;
// Capabilities keeps declaration order.
type CatalogSpec struct {
	Languages    []string `json:"languages"`
	Capabilities []string `json:"capabilities"`
}

// EngineSpec describes computation-engine categories.
type EngineSpec struct {
	Types   []string `json:"types"`
	Engines []string `json:"engines"`
}

// FormatSpec describes output-format categories.
type FormatSpec struct {
	Formats   []string `json:"formats"`
	Templates []string `json:"templates"`
}

// OperationalSpec describes categories addressing external systems.
type OperationalSpec struct {
	Systems    []string `json:"systems"`
	Operations []string `json:"operations"`
}

// TrackingSpec describes integration-tracking categories.
type TrackingSpec struct {
	Integrations []string `json:"integrations"`
	Features     []string `json:"features"`
}

// Descriptor is the tagged union over the five category shapes. Exactly one
// variant field matching Kind is populated.
type Descriptor struct {
	Kind        Kind             `json:"kind"`
	Catalog     *CatalogSpec     `json:"catalog,omitempty"`
	Engine      *EngineSpec      `json:"engine,omitempty"`
	Format      *FormatSpec      `json:"format,omitempty"`
	Operational *OperationalSpec `json:"operational,omitempty"`
	Tracking    *TrackingSpec    `json:"tracking,omitempty"`
}

// NewCatalog builds a catalog descriptor. Languages are deduplicated;
// capability order is preserved.
func NewCatalog(languages, capabilities []string) Descriptor {
	return Descriptor{
		Kind: KindCatalog,
		Catalog: &CatalogSpec{
			Languages:    normalizeSet(languages),
			Capabilities: normalizeSequence(capabilities),
		},
	}
}

// NewEngine builds an engine descriptor.
func NewEngine(types, engines []string) Descriptor {
	return Descriptor{
		Kind: KindEngine,
		Engine: &EngineSpec{
			Types:   normalizeSet(types),
			Engines: normalizeSet(engines),
		},
	}
}

// NewFormat builds a format descriptor.
func NewFormat(formats, templates []string) Descriptor {
	return Descriptor{
		Kind: KindFormat,
		Format: &FormatSpec{
			Formats:   normalizeSet(formats),
			Templates: normalizeSequence(templates),
		},
	}
}

// NewOperational builds an operational descriptor.
func NewOperational(systems, operations []string) Descriptor {
	return Descriptor{
		Kind: KindOperational,
		Operational: &OperationalSpec{
			Systems:    normalizeSet(systems),
			Operations: normalizeSequence(operations),
		},
	}
}

// NewTracking builds a tracking descriptor.
func NewTracking(integrations, features []string) Descriptor {
	return Descriptor{
		Kind: KindTracking,
		Tracking: &TrackingSpec{
			Integrations: normalizeSet(integrations),
			Features:     normalizeSequence(features),
		},
	}
}

// Validate checks that exactly the variant matching Kind is populated.
func (d Descriptor) Validate() error {
	variants := 0
	var match bool
	if d.Catalog != nil {
		variants++
		match = match || d.Kind == KindCatalog
	}
	if d.Engine != nil {
		variants++
		match = match || d.Kind == KindEngine
	}
	if d.Format != nil {
		variants++
		match = match || d.Kind == KindFormat
	}
	if d.Operational != nil {
		variants++
		match = match || d.Kind == KindOperational
	}
	if d.Tracking != nil {
		variants++
		match = match || d.Kind == KindTracking
	}

	if _, err := ParseKind(string(d.Kind)); err != nil {
		return err
	}
	if variants != 1 || !match {
		return fmt.Errorf("tool: descriptor kind %q requires exactly its matching variant", d.Kind)
	}
	return nil
}

// UnmarshalJSON decodes a descriptor and rejects unknown kinds and
// kind/variant mismatches.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	type alias Descriptor
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*d = Descriptor(decoded)
	return d.Validate()
}

// Clone returns a deep copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	out := Descriptor{Kind: d.Kind}
	if d.Catalog != nil {
		out.Catalog = &CatalogSpec{
			Languages:    cloneStrings(d.Catalog.Languages),
			Capabilities: cloneStrings(d.Catalog.Capabilities),
		}
	}
	if d.Engine != nil {
		out.Engine = &EngineSpec{
			Types:   cloneStrings(d.Engine.Types),
			Engines: cloneStrings(d.Engine.Engines),
		}
	}
	if d.Format != nil {
		out.Format = &FormatSpec{
			Formats:   cloneStrings(d.Format.Formats),
			Templates: cloneStrings(d.Format.Templates),
		}
	}
	if d.Operational != nil {
		out.Operational = &OperationalSpec{
			Systems:    cloneStrings(d.Operational.Systems),
			Operations: cloneStrings(d.Operational.Operations),
		}
	}
	if d.Tracking != nil {
		out.Tracking = &TrackingSpec{
			Integrations: cloneStrings(d.Tracking.Integrations),
			Features:     cloneStrings(d.Tracking.Features),
		}
	}
	return out
}

// normalizeSet trims entries, drops empties, and deduplicates while keeping
// first-occurrence order so enumeration stays deterministic.
func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		clean := strings.TrimSpace(v)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}

// normalizeSequence trims entries and drops empties, preserving order and
// duplicates (sequences are ordered, not sets).
func normalizeSequence(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		clean := strings.TrimSpace(v)
		if clean == "" {
			continue
		}
		out = append(out, clean)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
