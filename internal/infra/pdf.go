package infra

// pdf.go: customer receipt rendered with go-pdf/fpdf on an A7-like page
// (74mm × 105mm, close to thermal paper):
//   - business name header
//   - sale id, caja and timestamp
//   - line table (name, qty, discounted total)
//   - bruto / descuento / total block and payment method
//   - QR pointing at the receipt URL when one is configured
//
// Output: storagePath/recibo_{venta}_{uuid}.pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"comercioapp/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// ReciboOptions carries the business data printed on every receipt.
type ReciboOptions struct {
	NombreComercio string
	StoragePath    string
	// QRBaseURL, when set, is suffixed with the venta id and encoded as a QR.
	QRBaseURL string
}

// GenerarReciboPDF renders r and returns the path of the written file.
func GenerarReciboPDF(r model.Recibo, opts ReciboOptions) (string, error) {
	if err := os.MkdirAll(opts.StoragePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%d_%s.pdf", r.VentaID, uuid.NewString()[:8])
	filePath := filepath.Join(opts.StoragePath, fileName)

	alto := 105.0
	if extra := float64(len(r.Lineas)-8) * 5; extra > 0 {
		alto += extra
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(opts.NombreComercio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Comprobante de venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Venta N° %d  -  Caja %d", r.VentaID, r.CajaID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, r.Fecha, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, l := range r.Lineas {
		nombre := []rune(l.Nombre)
		if len(nombre) > 22 {
			nombre = append(nombre[:21], '.')
		}
		etiqueta := string(nombre)
		if !l.Descuento.IsZero() {
			etiqueta = fmt.Sprintf("%s (-%s%%)", etiqueta, l.Descuento.String())
		}
		pdf.CellFormat(col1, 5, tr(etiqueta), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", l.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+l.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	if !r.Descuento.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+r.Bruto.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1+col2, 5, "Descuento:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-$"+r.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+r.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Medio de pago: "+string(r.MedioPago)), "", 1, "L", false, 0, "")

	// ── QR ───────────────────────────────────────────────────────────────────
	if opts.QRBaseURL != "" {
		png, err := qrcode.Encode(fmt.Sprintf("%s%d", opts.QRBaseURL, r.VentaID), qrcode.Medium, 256)
		if err != nil {
			return "", fmt.Errorf("pdf: qr: %w", err)
		}
		imgName := fmt.Sprintf("qr_%d", r.VentaID)
		pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		size := 22.0
		pdf.Ln(2)
		pdf.ImageOptions(imgName, (pageW-size)/2, pdf.GetY(), size, size, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
