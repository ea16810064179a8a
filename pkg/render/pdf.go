package render

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/logging"
)

// PDF composites the board and writes it as a single-page PDF.
// The page takes the canvas orientation and the rendered bitmap is
// scaled to fill the page width.
func (c *Context) PDF(mb *pixe.Moodboard, layer *image.RGBA, w io.Writer) error {
	logging.Debug("Render PDF for board %q", mb.ID)

	dst, err := c.Render(mb, layer)
	if err != nil {
		return err
	}

	s := mb.Settings()
	pdf := setupPDF(mb, s)
	pdf.AddPage()

	err = embedPNG(pdf, dst)
	if err != nil {
		return err
	}

	return pdf.Output(w)
}

func setupPDF(mb *pixe.Moodboard, s pixe.CanvasSettings) *gofpdf.Fpdf {
	orientation := "P" // [P]ortrait or [L]andscape
	if s.Width > s.Height {
		orientation = "L"
	}
	sizeUnit := "pt"
	fontDir := ""
	pdf := gofpdf.New(orientation, sizeUnit, "A4", fontDir)

	pdf.SetMargins(0, 0, 0)
	pdf.SetProducer("pixe", true)
	pdf.SetTitle(mb.Title, true)

	modified := mb.LastModified.UTC()
	if !modified.IsZero() {
		pdf.SetModificationDate(modified)
		pdf.SetCreationDate(modified)
	}

	return pdf
}

func embedPNG(pdf *gofpdf.Fpdf, i *image.RGBA) error {
	name := uuid.New().String()
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	var buf bytes.Buffer
	err := png.Encode(&buf, i)
	if err != nil {
		return err
	}
	pdf.RegisterImageOptionsReader(name, opts, &buf)

	// scale to the page width, keep the aspect ratio and center
	// vertically
	wPage, hPage := pdf.GetPageSize()
	ratio := float64(i.Bounds().Dy()) / float64(i.Bounds().Dx())
	h := wPage * ratio
	y := (hPage - h) / 2
	if y < 0 {
		y = 0
	}

	flow := false
	link := 0
	linkStr := ""
	pdf.ImageOptions(name, 0, y, wPage, 0, flow, opts, link, linkStr)

	return nil
}

// ValidatePDF checks that the given file is a well-formed PDF document.
func ValidatePDF(path string) error {
	conf := pdfcpu.NewDefaultConfiguration()
	return pdfapi.ValidateFile(path, conf)
}
