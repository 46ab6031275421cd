package router_test

import (
	"testing"

	"github.com/forbearing/tstore/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type QuoteData struct{}
type TickQuoteData struct{}
type BarQuoteKey struct{}

func TestRegisterStripsSuffix(t *testing.T) {
	rt := router.New(router.Options{IgnoredClassNameSuffixes: []string{"Data", "Key"}})

	coll, err := rt.Register((*QuoteData)(nil))
	require.NoError(t, err)
	assert.Equal(t, "Quote", coll)

	require.NoError(t, rt.RegisterSubtype((*QuoteData)(nil), (*TickQuoteData)(nil)))
	subColl, ok := rt.CollectionFor((*TickQuoteData)(nil))
	require.True(t, ok)
	assert.Equal(t, "Quote", subColl, "subtype shares the root's collection")

	chain, ok := rt.TypeChain((*TickQuoteData)(nil))
	require.True(t, ok)
	assert.Equal(t, []string{"Quote", "TickQuote"}, chain)
}

func TestRegisterFirstMatchWins(t *testing.T) {
	// "Data" and "Key" both configured; BarQuoteKey only matches "Key".
	rt := router.New(router.Options{IgnoredClassNameSuffixes: []string{"Data", "Key"}})
	coll, err := rt.Register((*BarQuoteKey)(nil))
	require.NoError(t, err)
	assert.Equal(t, "BarQuote", coll)
}

func TestUnregisteredTypeNotFound(t *testing.T) {
	rt := router.New(router.DefaultOptions())
	_, ok := rt.CollectionFor((*QuoteData)(nil))
	assert.False(t, ok)
}

func TestAssignableFrom(t *testing.T) {
	rt := router.New(router.DefaultOptions())
	_, err := rt.Register((*QuoteData)(nil))
	require.NoError(t, err)
	require.NoError(t, rt.RegisterSubtype((*QuoteData)(nil), (*TickQuoteData)(nil)))

	chain, _ := rt.TypeChain((*TickQuoteData)(nil))
	assert.True(t, rt.AssignableFrom((*QuoteData)(nil), chain), "base type assignable from subtype")
	assert.False(t, rt.AssignableFrom((*TickQuoteData)(nil), []string{"Quote"}), "subtype not assignable from base-only chain")
}
