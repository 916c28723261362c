package catalog_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matka-backend/internal/catalog"
	"matka-backend/internal/models"
)

// The legacy double panna chart, all 90 entries.
var doublePannas = []string{
	"100", "110", "112", "113", "114", "115", "116", "117", "118", "119",
	"122", "133", "144", "155", "166", "177", "188", "199", "200", "220",
	"223", "224", "225", "226", "227", "228", "229", "233", "244", "255",
	"266", "277", "288", "299", "300", "330", "334", "335", "336", "337",
	"338", "339", "344", "355", "366", "377", "388", "399", "400", "440",
	"445", "446", "447", "448", "449", "455", "466", "477", "488", "499",
	"500", "550", "556", "557", "558", "559", "566", "577", "588", "599",
	"600", "660", "667", "668", "669", "677", "688", "699", "700", "770",
	"778", "779", "788", "799", "800", "880", "889", "899", "900", "990",
}

func TestClassifyReferenceSets(t *testing.T) {
	c := catalog.New()

	for d := 0; d <= 9; d++ {
		kind, err := c.Classify(fmt.Sprintf("%d", d))
		require.NoError(t, err)
		assert.Equal(t, models.BidKindSingleDigit, kind)
	}

	for j := 0; j <= 99; j++ {
		kind, err := c.Classify(fmt.Sprintf("%02d", j))
		require.NoError(t, err)
		assert.Equal(t, models.BidKindJodi, kind)
	}

	for d := 0; d <= 9; d++ {
		kind, err := c.Classify(fmt.Sprintf("%d%d%d", d, d, d))
		require.NoError(t, err)
		assert.Equal(t, models.BidKindTriplePanna, kind)
	}

	for _, p := range doublePannas {
		kind, err := c.Classify(p)
		require.NoError(t, err, "double panna %s", p)
		assert.Equal(t, models.BidKindDoublePanna, kind, "double panna %s", p)
	}

	for _, p := range c.Members(models.BidKindSinglePanna) {
		kind, err := c.Classify(p)
		require.NoError(t, err, "single panna %s", p)
		assert.Equal(t, models.BidKindSinglePanna, kind, "single panna %s", p)
	}
}

func TestClassifyRejectsUnknownValues(t *testing.T) {
	c := catalog.New()

	for _, v := range []string{"", "AB", "1234", "-1", "12a", "012", "011", "211", "  7", "7 "} {
		_, err := c.Classify(v)
		require.Error(t, err, "value %q", v)
		assert.True(t, errors.Is(err, catalog.ErrInvalidValue), "value %q", v)
	}
}

func TestDoublePannaExactMembership(t *testing.T) {
	c := catalog.New()

	assert.Equal(t, doublePannas, c.Members(models.BidKindDoublePanna))
}

func TestSetSizes(t *testing.T) {
	c := catalog.New()

	assert.Len(t, c.Members(models.BidKindSingleDigit), 10)
	assert.Len(t, c.Members(models.BidKindJodi), 100)
	assert.Len(t, c.Members(models.BidKindSinglePanna), 120)
	assert.Len(t, c.Members(models.BidKindDoublePanna), 90)
	assert.Len(t, c.Members(models.BidKindTriplePanna), 10)
}

func TestIsValid(t *testing.T) {
	c := catalog.New()

	assert.True(t, c.IsValid(models.BidKindSingleDigit, "7"))
	assert.True(t, c.IsValid(models.BidKindJodi, "07"))
	assert.True(t, c.IsValid(models.BidKindDoublePanna, "118"))
	assert.False(t, c.IsValid(models.BidKindDoublePanna, "123"))
	assert.False(t, c.IsValid(models.BidKindSingleDigit, "11"))
	assert.False(t, c.IsValid("nonsense", "7"))
}

func TestPannaDigit(t *testing.T) {
	cases := map[string]string{
		"123": "6",
		"118": "0",
		"550": "0",
		"999": "7",
		"100": "1",
		"777": "1",
	}
	for panna, want := range cases {
		got, err := catalog.PannaDigit(panna)
		require.NoError(t, err, panna)
		assert.Equal(t, want, got, panna)
	}

	_, err := catalog.PannaDigit("12x")
	assert.Error(t, err)
	_, err = catalog.PannaDigit("12")
	assert.Error(t, err)
}
