package query

import (
	"slices"
	"strings"

	"github.com/roach88/treeq/internal/fulltext"
	"github.com/roach88/treeq/internal/ir"
)

// Filter accumulates the conditions an index may use to narrow the
// candidates of one selector.
//
// Every restriction is conservative: a node satisfying the query always
// satisfies the filter. The converse does not hold, so candidates are still
// evaluated row by row unless an index proves a condition itself.
type Filter struct {
	selector           *Selector
	bindings           ir.IRObject
	notNull            []string
	fullText           []string
	fullTextConstraint fulltext.Expression
}

// NewFilter creates an empty filter for sel. bindings are the bind variable
// values the plan is built for.
func NewFilter(sel *Selector, bindings ir.IRObject) *Filter {
	if bindings == nil {
		bindings = ir.IRObject{}
	}
	return &Filter{selector: sel, bindings: bindings}
}

// Selector returns the selector the filter narrows.
func (f *Filter) Selector() *Selector { return f.selector }

// Bindings returns the bind variable values of the plan.
func (f *Filter) Bindings() ir.IRObject { return f.bindings }

// RestrictPropertyNotNull requires the named property to exist.
func (f *Filter) RestrictPropertyNotNull(name string) {
	if i, found := slices.BinarySearch(f.notNull, name); !found {
		f.notNull = slices.Insert(f.notNull, i, name)
	}
}

// RestrictFullTextCondition records a full-text search string.
func (f *Filter) RestrictFullTextCondition(text string) {
	if !slices.Contains(f.fullText, text) {
		f.fullText = append(f.fullText, text)
	}
}

// SetFullTextConstraint records the parsed full-text expression that covers
// every full-text predicate on the selector. A full-text index matches this
// expression; without it, such an index cannot answer the filter.
func (f *Filter) SetFullTextConstraint(expr fulltext.Expression) {
	f.fullTextConstraint = expr
}

// FullTextConstraint returns the expression set by SetFullTextConstraint.
func (f *Filter) FullTextConstraint() fulltext.Expression {
	return f.fullTextConstraint
}

// NotNullProperties returns the required properties, sorted.
func (f *Filter) NotNullProperties() []string { return f.notNull }

// FullTextConditions returns the full-text search strings in the order they
// were pushed.
func (f *Filter) FullTextConditions() []string { return f.fullText }

// IsEmpty reports whether the filter has no restriction at all.
func (f *Filter) IsEmpty() bool {
	return len(f.notNull) == 0 && len(f.fullText) == 0 && f.fullTextConstraint == nil
}

// String renders the filter for plans, e.g.
//
//	a [title is not null, contains 'go']
func (f *Filter) String() string {
	var parts []string
	for _, p := range f.notNull {
		parts = append(parts, p+" is not null")
	}
	for _, t := range f.fullText {
		parts = append(parts, "contains '"+strings.ReplaceAll(t, "'", "''")+"'")
	}
	name := ""
	if f.selector != nil {
		name = f.selector.Name()
	}
	return name + " [" + strings.Join(parts, ", ") + "]"
}
