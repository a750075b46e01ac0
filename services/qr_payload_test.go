package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/models"
)

func TestParseDeepLink(t *testing.T) {
	p := NewQRParser("")

	ref, err := p.Parse("coheeapp://table/hkstp/T12/abc123")
	require.NoError(t, err)
	assert.Equal(t, TableReference{LocationID: "hkstp", TableNumber: "T12", Token: "abc123"}, ref)

	// token boleh kosong; resolusi jatuh ke nomor meja
	ref, err = p.Parse("coheeapp://table/main/5/")
	require.NoError(t, err)
	assert.Equal(t, "5", ref.TableNumber)
	assert.Empty(t, ref.Token)
}

func TestParseSimple(t *testing.T) {
	p := NewQRParser("")

	ref, err := p.Parse("table-42-secret")
	require.NoError(t, err)
	assert.Equal(t, TableReference{TableID: "42", Token: "secret"}, ref)

	ref, err = p.Parse("table-6f1c2a9e-1b2c-4d5e-8f90-0123456789ab-deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "6f1c2a9e-1b2c-4d5e-8f90-0123456789ab", ref.TableID)
	assert.Equal(t, "deadbeef", ref.Token)
}

func TestParseRejectsUnknownPayloads(t *testing.T) {
	p := NewQRParser("coheeapp")

	cases := []string{
		"",
		"hello world",
		"https://example.com/table/1",
		"coheeapp://table/main/5",
		"coheeapp://table/main/5/tok/extra",
		"coheeapp://table//5/tok",
		"coheeapp://table/main//tok",
		"otherapp://table/main/5/tok",
		"table-",
		"table-42",
		"table-42-",
		"table--tok",
	}
	for _, raw := range cases {
		_, err := p.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidQRFormat, "payload %q", raw)
	}
}

func TestTableQRPayloadRoundTrip(t *testing.T) {
	p := NewQRParser("coheeapp")
	loc := "hkstp"
	table := &models.Table{ID: "t-1", TableNumber: "A3", QRCodeToken: models.NewQRToken(), LocationID: &loc}

	ref, err := p.Parse(p.TableQRPayload(table))
	require.NoError(t, err)
	assert.Equal(t, "hkstp", ref.LocationID)
	assert.Equal(t, "A3", ref.TableNumber)
	assert.Equal(t, table.QRCodeToken, ref.Token)

	ref, err = p.Parse(SimpleQRPayload(table))
	require.NoError(t, err)
	assert.Equal(t, "t-1", ref.TableID)
	assert.Equal(t, table.QRCodeToken, ref.Token)
}

func TestTableQRPayloadDefaultLocation(t *testing.T) {
	p := NewQRParser("coheeapp")
	table := &models.Table{TableNumber: "7", QRCodeToken: "tok"}

	assert.Equal(t, "coheeapp://table/main/7/tok", p.TableQRPayload(table))
}

func TestTableQRCodePNG(t *testing.T) {
	png, err := TableQRCodePNG("coheeapp://table/main/7/tok", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
