package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/treeq/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL over the store schema
// (nodes, properties and tokens tables).
//
// CRITICAL: ALL row queries end in ORDER BY path for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to parameterized SQL returning one path
// column. Returns (sql, params, error) tuple.
//
// MANDATORY: Every query includes ORDER BY path COLLATE BINARY ASC.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	sel, err := selectOf(q)
	if err != nil {
		return "", nil, err
	}
	where, params, err := c.compileWhere(sel)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT n.path FROM nodes n" + where + " ORDER BY " + stableOrderKey()
	return sql, params, nil
}

// CompileCount converts a query to SQL counting the paths it would return.
// Indexes use it to estimate their cost.
func (c *SQLCompiler) CompileCount(q queryir.Query) (string, []any, error) {
	sel, err := selectOf(q)
	if err != nil {
		return "", nil, err
	}
	where, params, err := c.compileWhere(sel)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM nodes n" + where, params, nil
}

func selectOf(q queryir.Query) (queryir.Select, error) {
	switch query := q.(type) {
	case nil:
		return queryir.Select{}, fmt.Errorf("cannot compile nil query")
	case queryir.Select:
		return query, nil
	case *queryir.Select:
		if query == nil {
			return queryir.Select{}, fmt.Errorf("cannot compile nil query")
		}
		return *query, nil
	default:
		return queryir.Select{}, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileWhere builds the WHERE clause of a Select, or "" when it has no
// conditions.
func (c *SQLCompiler) compileWhere(q queryir.Select) (string, []any, error) {
	var conds []string
	var params []any
	if q.From != "" {
		conds = append(conds, "n.node_type = ?")
		params = append(params, q.From)
	}
	if q.Filter != nil {
		sql, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		conds = append(conds, sql)
		params = append(params, filterParams...)
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), params, nil
}

// stableOrderKey returns the ORDER BY clause for a query.
// COLLATE BINARY keeps text ordering identical to Go's string ordering.
func stableOrderKey() string {
	return "n.path COLLATE BINARY ASC"
}

// compilePredicate compiles a queryir.Predicate to a WHERE clause fragment.
// Returns (sql, params, error).
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.PropertyNotNull:
		return c.compileNotNull(pred)
	case *queryir.PropertyNotNull:
		return c.compileNotNull(*pred)
	case queryir.HasToken:
		return c.compileToken(pred)
	case *queryir.HasToken:
		return c.compileToken(*pred)
	case queryir.HasTokenPrefix:
		return c.compilePrefix(pred)
	case *queryir.HasTokenPrefix:
		return c.compilePrefix(*pred)
	case queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *queryir.And:
		return c.compileJunction(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	case *queryir.Or:
		return c.compileJunction(pred.Predicates, " OR ", "1 = 0")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileNotNull compiles a PropertyNotNull predicate to an EXISTS over the
// properties table.
func (c *SQLCompiler) compileNotNull(nn queryir.PropertyNotNull) (string, []any, error) {
	if nn.Name == "" {
		return "", nil, fmt.Errorf("PropertyNotNull: empty property name")
	}
	sql := "EXISTS (SELECT 1 FROM properties p WHERE p.node_path = n.path AND p.name = ?)"
	return sql, []any{nn.Name}, nil
}

// compileToken compiles a HasToken predicate to an EXISTS over the tokens
// table.
func (c *SQLCompiler) compileToken(ht queryir.HasToken) (string, []any, error) {
	if ht.Token == "" {
		return "", nil, fmt.Errorf("HasToken: empty token")
	}
	sql := "EXISTS (SELECT 1 FROM tokens t WHERE t.node_path = n.path AND t.token = ?"
	params := []any{ht.Token}
	if ht.Property != "" {
		sql += " AND t.property = ?"
		params = append(params, ht.Property)
	}
	return sql + ")", params, nil
}

// compilePrefix compiles a HasTokenPrefix predicate to a range scan over the
// tokens table. Stored tokens are valid UTF-8 and never contain the byte
// 0xFF, so every token with the prefix sorts below prefix+"\xff".
func (c *SQLCompiler) compilePrefix(hp queryir.HasTokenPrefix) (string, []any, error) {
	if hp.Prefix == "" {
		return "", nil, fmt.Errorf("HasTokenPrefix: empty prefix")
	}
	sql := "EXISTS (SELECT 1 FROM tokens t WHERE t.node_path = n.path AND t.token >= ? AND t.token < ?"
	params := []any{hp.Prefix, hp.Prefix + "\xff"}
	if hp.Property != "" {
		sql += " AND t.property = ?"
		params = append(params, hp.Property)
	}
	return sql + ")", params, nil
}

// compileJunction compiles And and Or. Each operand is parenthesized so
// nesting keeps its grouping; empty is the identity of the junction.
func (c *SQLCompiler) compileJunction(preds []queryir.Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range preds {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}
	if len(sqlParts) == 1 {
		return sqlParts[0], allParams, nil
	}
	return "(" + strings.Join(sqlParts, sep) + ")", allParams, nil
}
