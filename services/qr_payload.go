package services

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/yeremiapane/cohee-app/models"
)

const (
	DefaultQRScheme = "coheeapp"

	simpleQRPrefix = "table-"
	deepLinkHost   = "table"
)

// TableReference adalah hasil decode QR. Field kosong berarti tidak ada di payload.
type TableReference struct {
	TableID     string `json:"table_id,omitempty"`
	TableNumber string `json:"table_number,omitempty"`
	Token       string `json:"token,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
}

func (r TableReference) IsEmpty() bool {
	return r.TableID == "" && r.TableNumber == "" && r.Token == ""
}

// QRParser mengenali dua format:
//
//	{scheme}://table/{locationId}/{tableNumber}/{token}
//	table-{tableId}-{token}
type QRParser struct {
	Scheme string
}

func NewQRParser(scheme string) *QRParser {
	if scheme == "" {
		scheme = DefaultQRScheme
	}
	return &QRParser{Scheme: scheme}
}

func (p *QRParser) deepLinkPrefix() string {
	return p.Scheme + "://" + deepLinkHost + "/"
}

// Parse tidak menyentuh store. Payload yang tidak dikenal => ErrInvalidQRFormat.
func (p *QRParser) Parse(raw string) (TableReference, error) {
	payload := strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(payload, p.deepLinkPrefix()); ok {
		return parseDeepLink(rest)
	}
	if rest, ok := strings.CutPrefix(payload, simpleQRPrefix); ok {
		return parseSimple(rest)
	}
	return TableReference{}, ErrInvalidQRFormat
}

// Segmen token boleh kosong ("table/main/5/"): Resolve lalu jatuh ke nomor meja,
// kecuali directory dijalankan dengan RequireToken.
func parseDeepLink(rest string) (TableReference, error) {
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return TableReference{}, ErrInvalidQRFormat
	}
	return TableReference{
		LocationID:  parts[0],
		TableNumber: parts[1],
		Token:       parts[2],
	}, nil
}

// Table id boleh berisi '-' (uuid), token tidak; jadi dipotong di '-' terakhir.
func parseSimple(rest string) (TableReference, error) {
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 || idx == len(rest)-1 {
		return TableReference{}, ErrInvalidQRFormat
	}
	return TableReference{
		TableID: rest[:idx],
		Token:   rest[idx+1:],
	}, nil
}

// TableQRPayload membentuk payload deep-link untuk dicetak di meja.
func (p *QRParser) TableQRPayload(table *models.Table) string {
	return fmt.Sprintf("%s%s/%s/%s", p.deepLinkPrefix(), table.Location(), table.TableNumber, table.QRCodeToken)
}

// SimpleQRPayload membentuk payload "table-{id}-{token}".
func SimpleQRPayload(table *models.Table) string {
	return simpleQRPrefix + table.ID + "-" + table.QRCodeToken
}

// TableQRCodePNG merender payload menjadi PNG.
func TableQRCodePNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
