package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treeq/internal/ir"
	"github.com/roach88/treeq/internal/query"
	"github.com/roach88/treeq/internal/testutil"
)

func TestComparison_Evaluate(t *testing.T) {
	tree := testutil.NewMemTree().
		Put("/doc",
			testutil.Str("title", "Go in Action"),
			testutil.Int("rank", 10),
			testutil.Bool("draft", false),
			testutil.Strs("tags", "go", "book"))

	tests := []struct {
		prop string
		op   Operator
		val  ir.IRValue
		want bool
	}{
		{"rank", OpEqual, ir.IRInt(10), true},
		{"rank", OpGreater, ir.IRInt(9), true},
		{"rank", OpLess, ir.IRInt(9), false},
		{"rank", OpLessOrEqual, ir.IRInt(10), true},
		{"rank", OpGreaterOrEqual, ir.IRInt(11), false},
		{"rank", OpNotEqual, ir.IRInt(10), false},
		{"rank", OpEqual, ir.IRString("10"), true},
		{"draft", OpEqual, ir.IRBool(false), true},
		{"title", OpLike, ir.IRString("Go%"), true},
		{"title", OpLike, ir.IRString("G_ in%"), true},
		{"title", OpLike, ir.IRString("go%"), false},
		{"tags", OpEqual, ir.IRString("book"), true},
		{"tags", OpEqual, ir.IRString("java"), false},
		{"missing", OpNotEqual, ir.IRString("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.prop+" "+string(tt.op), func(t *testing.T) {
			n := NewComparison(DynamicOperand{SelectorName: "a", Property: tt.prop}, tt.op, Literal{Value: tt.val})
			sel := bind(t, n, nil)
			assert.Equal(t, tt.want, eval(t, n, tree, sel, "/doc"))
		})
	}
}

func TestComparison_StringAndInMap(t *testing.T) {
	op := DynamicOperand{SelectorName: "a", Property: "rank"}
	eq := NewComparison(op, OpEqual, Literal{Value: ir.IRInt(3)})
	assert.Equal(t, "a.rank = 3", eq.String())
	assert.Equal(t, map[DynamicOperand][]StaticOperand{op: {Literal{Value: ir.IRInt(3)}}}, eq.InMap())

	gt := NewComparison(op, OpGreater, BindVariable{Name: "min"})
	assert.Equal(t, "a.rank > $min", gt.String())
	assert.Empty(t, gt.InMap())
}

func TestComparison_RestrictAndExistence(t *testing.T) {
	n := NewComparison(DynamicOperand{SelectorName: "a", Property: "rank"}, OpLess, Literal{Value: ir.IRInt(3)})
	sel := bind(t, n, nil)
	f := query.NewFilter(sel, nil)
	require.NoError(t, n.Restrict(f))
	assert.Equal(t, []string{"rank"}, f.NotNullProperties())
	assert.Empty(t, f.FullTextConditions())

	conds := n.PropertyExistenceConditions()
	require.Len(t, conds, 1)
	assert.Equal(t, "a.rank", conds[0].Key())
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("like")
	require.NoError(t, err)
	assert.Equal(t, OpLike, op)
	op, err = ParseOperator("!=")
	require.NoError(t, err)
	assert.Equal(t, OpNotEqual, op)
	_, err = ParseOperator("~")
	assert.Error(t, err)
}

func TestIn(t *testing.T) {
	op := DynamicOperand{SelectorName: "a", Property: "status"}
	n := NewIn(op, Literal{Value: ir.IRString("open")}, BindVariable{Name: "s"})
	sel := bind(t, n, nil)
	assert.Equal(t, "a.status IN ('open', $s)", n.String())

	tree := testutil.NewMemTree().
		Put("/open", testutil.Str("status", "open")).
		Put("/closed", testutil.Str("status", "closed")).
		Put("/none")
	bindings := ir.IRObject{"s": ir.IRString("closed")}
	for path, want := range map[string]bool{"/open": true, "/closed": true, "/none": false} {
		ok, err := n.Evaluate(tree.Row(sel, path, bindings))
		require.NoError(t, err)
		assert.Equal(t, want, ok, path)
	}

	assert.Len(t, n.InMap()[op], 2)
	f := query.NewFilter(sel, nil)
	require.NoError(t, n.Restrict(f))
	assert.Equal(t, []string{"status"}, f.NotNullProperties())
}

func TestPropertyExistence(t *testing.T) {
	n := NewPropertyExistence("a", "title")
	sel := bind(t, n, nil)
	rel := NewPropertyExistence("a", "child/title")
	bind(t, rel, nil)
	tree := testutil.NewMemTree().
		Put("/doc", testutil.Str("title", "x")).
		Put("/bare/child", testutil.Str("title", "y"))

	assert.True(t, eval(t, n, tree, sel, "/doc"))
	assert.False(t, eval(t, n, tree, sel, "/bare"))
	assert.True(t, eval(t, rel, tree, rel.Selector(), "/bare"))
	assert.Equal(t, "a.title IS NOT NULL", n.String())
	assert.Equal(t, "a.child/title IS NOT NULL", rel.String())

	f := query.NewFilter(sel, nil)
	require.NoError(t, n.Restrict(f))
	require.NoError(t, rel.Restrict(f))
	assert.Equal(t, []string{"title"}, f.NotNullProperties())
}

func TestLikeMatch(t *testing.T) {
	assert.True(t, likeMatch("%", ""))
	assert.True(t, likeMatch("a%c", "abbbc"))
	assert.False(t, likeMatch("a_c", "abbc"))
	assert.True(t, likeMatch(`100\%`, "100%"))
	assert.False(t, likeMatch(`100\%`, "1000"))
}
