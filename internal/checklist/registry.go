// Package checklist provides the static compliance checklists.
//
// Checklists are declared in YAML. The built-in set is embedded in the
// binary; a user file with the same layout can replace it. A Registry is
// immutable once loaded and safe for concurrent use.
package checklist

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ChecklistRegistry = (*Registry)(nil)

//go:embed checklists.yaml
var builtin []byte

// Registry holds the checklists and classification profiles.
type Registry struct {
	checklists map[domain.DocumentType]domain.Checklist
	order      []domain.DocumentType
	profiles   []domain.ClassificationProfile
}

type fileSchema struct {
	Checklists []checklistSchema `yaml:"checklists"`
}

type checklistSchema struct {
	DocumentType   string                `yaml:"document_type"`
	Classification *classificationSchema `yaml:"classification"`
	Rules          []ruleSchema          `yaml:"rules"`
}

type classificationSchema struct {
	Priority int        `yaml:"priority"`
	Markers  [][]string `yaml:"markers"`
	Keywords []string   `yaml:"keywords"`
}

type ruleSchema struct {
	ID          string          `yaml:"id"`
	Description string          `yaml:"description"`
	Required    *bool           `yaml:"required"`
	AppliesWhen []string        `yaml:"applies_when"`
	Elements    []elementSchema `yaml:"elements"`
}

type elementSchema struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// Default returns the registry built from the embedded checklists.
func Default() (*Registry, error) {
	return Parse(builtin)
}

// LoadFile reads a checklist file from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checklist file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads checklists from r.
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read checklists: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML and validates every checklist.
// Rules default to required unless they say otherwise.
func Parse(data []byte) (*Registry, error) {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse checklists: %v", domain.ErrInvalidInput, err)
	}
	if len(file.Checklists) == 0 {
		return nil, fmt.Errorf("%w: no checklists defined", domain.ErrInvalidInput)
	}

	reg := &Registry{checklists: make(map[domain.DocumentType]domain.Checklist)}

	for _, cs := range file.Checklists {
		docType := domain.ParseDocumentType(cs.DocumentType)
		if docType == domain.DocumentTypeUnknown && !isGenericLabel(cs.DocumentType) {
			return nil, fmt.Errorf("%w: unrecognised document type %q", domain.ErrInvalidInput, cs.DocumentType)
		}
		if _, dup := reg.checklists[docType]; dup {
			return nil, fmt.Errorf("%w: checklist %q defined twice", domain.ErrInvalidInput, docType)
		}

		list := domain.Checklist{DocumentType: docType}
		for _, rs := range cs.Rules {
			list.Rules = append(list.Rules, rs.toRule(docType))
		}
		if err := list.Validate(); err != nil {
			return nil, err
		}

		reg.checklists[docType] = list
		reg.order = append(reg.order, docType)

		if cs.Classification != nil && docType.IsKnown() {
			reg.profiles = append(reg.profiles, domain.ClassificationProfile{
				DocumentType: docType,
				Priority:     cs.Classification.Priority,
				Markers:      cs.Classification.Markers,
				Keywords:     cs.Classification.Keywords,
			})
		}
	}

	sort.SliceStable(reg.profiles, func(i, j int) bool {
		return reg.profiles[i].Priority < reg.profiles[j].Priority
	})

	return reg, nil
}

func (rs ruleSchema) toRule(docType domain.DocumentType) domain.ChecklistRule {
	required := true
	if rs.Required != nil {
		required = *rs.Required
	}
	elements := make([]domain.RuleElement, 0, len(rs.Elements))
	for _, es := range rs.Elements {
		elements = append(elements, domain.RuleElement{Name: es.Name, Phrases: es.Phrases})
	}
	return domain.ChecklistRule{
		ID:           rs.ID,
		DocumentType: docType,
		Description:  rs.Description,
		Required:     required,
		Elements:     elements,
		AppliesWhen:  rs.AppliesWhen,
	}
}

// RulesFor returns a copy of the rules for a document type, in checklist order.
// DocumentTypeUnknown resolves only if a generic checklist keyed "unknown" exists.
func (r *Registry) RulesFor(docType domain.DocumentType) ([]domain.ChecklistRule, error) {
	list, ok := r.checklists[docType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDocumentType, docType)
	}
	rules := make([]domain.ChecklistRule, len(list.Rules))
	for i, rule := range list.Rules {
		rules[i] = cloneRule(rule)
	}
	return rules, nil
}

func cloneRule(rule domain.ChecklistRule) domain.ChecklistRule {
	if rule.Elements != nil {
		elements := make([]domain.RuleElement, len(rule.Elements))
		for i, e := range rule.Elements {
			elements[i] = domain.RuleElement{Name: e.Name, Phrases: slices.Clone(e.Phrases)}
		}
		rule.Elements = elements
	}
	rule.AppliesWhen = slices.Clone(rule.AppliesWhen)
	return rule
}

// DocumentTypes returns the types with a checklist, in file order.
func (r *Registry) DocumentTypes() []domain.DocumentType {
	out := make([]domain.DocumentType, len(r.order))
	copy(out, r.order)
	return out
}

// Profiles returns the classification profiles ordered by priority.
func (r *Registry) Profiles() []domain.ClassificationProfile {
	out := make([]domain.ClassificationProfile, len(r.profiles))
	for i, p := range r.profiles {
		if p.Markers != nil {
			markers := make([][]string, len(p.Markers))
			for j, group := range p.Markers {
				markers[j] = slices.Clone(group)
			}
			p.Markers = markers
		}
		p.Keywords = slices.Clone(p.Keywords)
		out[i] = p
	}
	return out
}

// isGenericLabel reports whether a checklist is the fallback for
// documents the classifier cannot place.
func isGenericLabel(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "unknown", "generic":
		return true
	default:
		return false
	}
}
