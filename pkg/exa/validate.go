package exa

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// Limits enforced before a webset or webset search is sent.
const (
	MaxQueryLength             = 5000
	MinEntityDescriptionLength = 2
	MaxEntityDescriptionLength = 200
	MaxCriteria                = 5
	MaxCriterionLength         = 1000
	MinRelationshipLimit       = 1
	MaxRelationshipLimit       = 10
	MaxEnrichmentLength        = 5000
	MaxEnrichmentOptions       = 150
	MaxExternalIDLength        = 300
	MaxMetadataValueLength     = 1000
)

var (
	entityTypes       = []string{EntityCompany, EntityPerson, EntityArticle, EntityResearchPaper, EntityCustom}
	sourceTypes       = []string{SourceImport, SourceWebset}
	enrichmentFormats = []string{FormatText, FormatDate, FormatNumber, FormatOptions, FormatEmail, FormatPhone, FormatURL}
	searchBehaviors   = []string{BehaviorOverride, BehaviorAppend}
	monitorBehaviors  = []string{MonitorBehaviorSearch, MonitorBehaviorRefresh}
)

// ValidateCreateWebset checks a webset creation request and returns a
// *errors.ValidationError naming the first offending field. It never
// modifies params.
func ValidateCreateWebset(params *CreateWebsetParams) error {
	if params == nil || (params.Search == nil && params.Import == nil) {
		return &exaerrors.ValidationError{
			Message:    "at least one of search or import is required",
			Suggestion: "set search.query, or import items from an existing import or webset",
		}
	}

	if params.Search != nil {
		if err := validateSearch("search", params.Search); err != nil {
			return err
		}
	}
	if params.Import != nil {
		if len(params.Import) == 0 {
			return invalid("import", "must contain at least one source")
		}
		if err := validateSources("import", params.Import, false); err != nil {
			return err
		}
	}
	if err := validateSources("exclude", params.Exclude, false); err != nil {
		return err
	}
	for i := range params.Enrichments {
		if err := validateEnrichment(fmt.Sprintf("enrichments[%d]", i), &params.Enrichments[i]); err != nil {
			return err
		}
	}
	if n := utf8.RuneCountInString(params.ExternalID); n > MaxExternalIDLength {
		return invalid("externalId", fmt.Sprintf("must be at most %d characters", MaxExternalIDLength))
	}
	return validateMetadata("metadata", params.Metadata)
}

// ValidateCreateWebsetSearch checks a request that adds a search to an
// existing webset, with the same per-field rules as an inline search.
func ValidateCreateWebsetSearch(params *CreateWebsetSearchParams) error {
	if params == nil {
		return invalid("query", "must be a non-empty string")
	}
	return validateSearch("", params)
}

func validateSearch(prefix string, s *CreateWebsetSearchParams) error {
	if err := requireText(field(prefix, "query"), s.Query); err != nil {
		return err
	}
	if utf8.RuneCountInString(s.Query) > MaxQueryLength {
		return invalid(field(prefix, "query"), fmt.Sprintf("must be at most %d characters", MaxQueryLength))
	}
	if s.Count != nil && *s.Count <= 0 {
		return invalid(field(prefix, "count"), "must be a positive integer")
	}
	if s.Entity != nil {
		if err := validateEntity(field(prefix, "entity"), s.Entity); err != nil {
			return err
		}
	}
	if err := validateCriteria(field(prefix, "criteria"), s.Criteria); err != nil {
		return err
	}
	if err := validateSources(field(prefix, "scope"), s.Scope, true); err != nil {
		return err
	}
	if err := validateSources(field(prefix, "exclude"), s.Exclude, false); err != nil {
		return err
	}
	if s.Behavior != "" && !slices.Contains(searchBehaviors, s.Behavior) {
		return invalid(field(prefix, "behavior"), oneOf(searchBehaviors))
	}
	return validateMetadata(field(prefix, "metadata"), s.Metadata)
}

func validateEntity(path string, e *EntityParams) error {
	if !slices.Contains(entityTypes, e.Type) {
		return invalid(path+".type", oneOf(entityTypes))
	}
	if e.Type != EntityCustom {
		return nil
	}
	n := utf8.RuneCountInString(strings.TrimSpace(e.Description))
	if n == 0 {
		return invalid(path+".description", "is required when type is custom")
	}
	if n < MinEntityDescriptionLength || n > MaxEntityDescriptionLength {
		return invalid(path+".description", lengthBetween(MinEntityDescriptionLength, MaxEntityDescriptionLength))
	}
	return nil
}

// validateCriteria treats nil as absent and an empty non-nil slice as an
// explicit empty list.
func validateCriteria(path string, criteria []CriterionParams) error {
	if criteria == nil {
		return nil
	}
	if len(criteria) == 0 {
		return invalid(path, "must contain at least one criterion")
	}
	if len(criteria) > MaxCriteria {
		return invalid(path, fmt.Sprintf("must contain at most %d criteria", MaxCriteria))
	}
	for i, c := range criteria {
		n := utf8.RuneCountInString(c.Description)
		if strings.TrimSpace(c.Description) == "" || n > MaxCriterionLength {
			return invalid(fmt.Sprintf("%s[%d].description", path, i), lengthBetween(1, MaxCriterionLength))
		}
	}
	return nil
}

func validateSources(path string, refs []SourceRef, allowRelationship bool) error {
	for i, ref := range refs {
		item := fmt.Sprintf("%s[%d]", path, i)
		if !slices.Contains(sourceTypes, ref.Source) {
			return invalid(item+".source", oneOf(sourceTypes))
		}
		if strings.TrimSpace(ref.ID) == "" {
			return invalid(item+".id", "must be a non-empty string")
		}
		if ref.Relationship == nil {
			continue
		}
		if !allowRelationship {
			return invalid(item+".relationship", "is only allowed on scope sources")
		}
		if strings.TrimSpace(ref.Relationship.Definition) == "" {
			return invalid(item+".relationship.definition", "must be a non-empty string")
		}
		if l := ref.Relationship.Limit; l < MinRelationshipLimit || l > MaxRelationshipLimit {
			return invalid(item+".relationship.limit",
				fmt.Sprintf("must be between %d and %d", MinRelationshipLimit, MaxRelationshipLimit))
		}
	}
	return nil
}

func validateEnrichment(prefix string, e *CreateEnrichmentParams) error {
	n := utf8.RuneCountInString(e.Description)
	if strings.TrimSpace(e.Description) == "" || n > MaxEnrichmentLength {
		return invalid(field(prefix, "description"), lengthBetween(1, MaxEnrichmentLength))
	}
	if e.Format != "" && !slices.Contains(enrichmentFormats, e.Format) {
		return invalid(field(prefix, "format"), oneOf(enrichmentFormats))
	}
	if e.Format == FormatOptions {
		if len(e.Options) == 0 {
			return invalid(field(prefix, "options"), "is required when format is options")
		}
		if len(e.Options) > MaxEnrichmentOptions {
			return invalid(field(prefix, "options"), fmt.Sprintf("must contain at most %d options", MaxEnrichmentOptions))
		}
	}
	for i, opt := range e.Options {
		if strings.TrimSpace(opt.Label) == "" {
			return invalid(fmt.Sprintf("%s[%d].label", field(prefix, "options"), i), "must be a non-empty string")
		}
	}
	return validateMetadata(field(prefix, "metadata"), e.Metadata)
}

// validateMetadata checks keys in sorted order so the reported field is
// stable.
func validateMetadata(path string, metadata map[string]string) error {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if utf8.RuneCountInString(metadata[k]) > MaxMetadataValueLength {
			return invalid(path+"."+k, fmt.Sprintf("must be at most %d characters", MaxMetadataValueLength))
		}
	}
	return nil
}

func validateMonitorBehavior(path, behaviorType string) error {
	if !slices.Contains(monitorBehaviors, behaviorType) {
		return invalid(path+".type", oneOf(monitorBehaviors))
	}
	return nil
}

// requireText fails when s is empty or only whitespace.
func requireText(path, s string) error {
	if strings.TrimSpace(s) == "" {
		return invalid(path, "must be a non-empty string")
	}
	return nil
}

func invalid(path, message string) error {
	return &exaerrors.ValidationError{Field: path, Message: message}
}

func field(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func oneOf(values []string) string {
	return "must be one of: " + strings.Join(values, ", ")
}

func lengthBetween(lo, hi int) string {
	return fmt.Sprintf("must be between %d and %d characters", lo, hi)
}
