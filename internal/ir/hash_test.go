package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterministic(t *testing.T) {
	a := []Property{{"title", IRString("x")}, {"n", IRInt(1)}}
	b := []Property{{"n", IRInt(1)}, {"title", IRString("x")}}

	ha, err := ContentHash("doc", a)
	require.NoError(t, err)
	hb, err := ContentHash("doc", b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb, "property order must not change the hash")
	assert.Len(t, ha, 64)
}

func TestContentHashChangesWithContent(t *testing.T) {
	base, _ := ContentHash("doc", []Property{{"title", IRString("x")}})
	other, _ := ContentHash("doc", []Property{{"title", IRString("y")}})
	typed, _ := ContentHash("folder", []Property{{"title", IRString("x")}})
	assert.NotEqual(t, base, other)
	assert.NotEqual(t, base, typed)
}

func TestBindingsHash(t *testing.T) {
	h1, err := BindingsHash(nil)
	require.NoError(t, err)
	h2, err := BindingsHash(IRObject{})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := BindingsHash(IRObject{"q": IRString("x")})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte("{}")
	assert.NotEqual(t, hashWithDomain(DomainNodeContent, data), hashWithDomain(DomainBindings, data))
}
