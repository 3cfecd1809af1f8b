package queryir

import "fmt"

// ValidationResult contains the pruning analysis of a query.
//
// A prunable query narrows the node set: every predicate in it can exclude
// some node. Queries outside that set still execute correctly, but an index
// gains nothing from them over a plain traversal.
type ValidationResult struct {
	// IsPrunable indicates that every part of the query narrows candidates.
	IsPrunable bool

	// Warnings lists the parts that do not narrow, or that can never match.
	// Empty when IsPrunable is true.
	Warnings []string
}

// Validate checks whether a query narrows the node set.
//
// Rules:
//  1. A Select needs a filter; without one it returns every node of its type
//  2. Names, tokens and prefixes must be non-empty
//  3. An empty And is vacuously true and narrows nothing
//  4. An empty Or is never true; the query can only return nothing
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPrunable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// validateQuery validates a query node.
func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addWarning("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addWarning("Unknown query type: %T", q)
	}
}

// validateSelect validates a Select query node.
func (v *validator) validateSelect(sel Select) {
	// Rule 1: a filter is what narrows
	if sel.Filter == nil {
		v.addWarning("Select over %q has no filter - every node is a candidate", sel.From)
		return
	}
	v.validatePredicate(sel.Filter)
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addWarning("nil predicate")
	case PropertyNotNull:
		v.validateNotNull(pred)
	case *PropertyNotNull:
		v.validateNotNull(*pred)
	case HasToken:
		v.validateToken(pred)
	case *HasToken:
		v.validateToken(*pred)
	case HasTokenPrefix:
		v.validatePrefix(pred)
	case *HasTokenPrefix:
		v.validatePrefix(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	case Or:
		v.validateOr(pred)
	case *Or:
		v.validateOr(*pred)
	default:
		v.addWarning("Unknown predicate type: %T", p)
	}
}

// validateNotNull validates a PropertyNotNull predicate.
func (v *validator) validateNotNull(nn PropertyNotNull) {
	// Rule 2
	if nn.Name == "" {
		v.addWarning("PropertyNotNull with empty property name")
	}
}

// validateToken validates a HasToken predicate.
func (v *validator) validateToken(ht HasToken) {
	// Rule 2
	if ht.Token == "" {
		v.addWarning("HasToken on %q with empty token", ht.Property)
	}
}

// validatePrefix validates a HasTokenPrefix predicate.
func (v *validator) validatePrefix(hp HasTokenPrefix) {
	// Rule 2: an empty prefix matches any token
	if hp.Prefix == "" {
		v.addWarning("HasTokenPrefix on %q with empty prefix - matches any token", hp.Property)
	}
}

// validateAnd validates an And predicate.
func (v *validator) validateAnd(and And) {
	// Rule 3
	if len(and.Predicates) == 0 {
		v.addWarning("Empty And - always true")
		return
	}
	for _, subPred := range and.Predicates {
		v.validatePredicate(subPred)
	}
}

// validateOr validates an Or predicate.
func (v *validator) validateOr(or Or) {
	// Rule 4
	if len(or.Predicates) == 0 {
		v.addWarning("Empty Or - never true")
		return
	}
	for _, subPred := range or.Predicates {
		v.validatePredicate(subPred)
	}
}
