package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acksell/docustore/analyzer"
	"github.com/acksell/docustore/schema"
	"github.com/acksell/docustore/value"
)

func TestSelect_UnknownFieldDefaultsToTokenizer(t *testing.T) {
	sch := schema.New("widgets")
	sel := analyzer.New(sch)
	assert.Equal(t, analyzer.Tokenizer, sel.Select("nope"))
}

func TestSelect_TokenizedTextUsesTokenizer(t *testing.T) {
	sch := schema.New("widgets")
	_, conflict := sch.AddOrGetField("title", value.KindText, false, true)
	require.Nil(t, conflict)

	sel := analyzer.New(sch)
	assert.Equal(t, analyzer.Tokenizer, sel.Select("title"))
}

func TestSelect_NumberUsesVerbatim(t *testing.T) {
	sch := schema.New("widgets")
	_, conflict := sch.AddOrGetField("count", value.KindNumber, false, true)
	require.Nil(t, conflict)

	sel := analyzer.New(sch)
	assert.Equal(t, analyzer.Verbatim, sel.Select("count"))
}

func TestSelect_CacheTracksSchemaChange(t *testing.T) {
	sch := schema.New("widgets")
	sel := analyzer.New(sch)

	assert.Equal(t, analyzer.Tokenizer, sel.Select("status"))

	_, conflict := sch.AddOrGetField("status", value.KindTimestamp, false, true)
	require.Nil(t, conflict)

	assert.Equal(t, analyzer.Verbatim, sel.Select("status"))
}
