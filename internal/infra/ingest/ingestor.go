package ingest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/ingest"
)

// Ingestor parses uploaded files that were already written to disk.
type Ingestor struct {
	Logger *slog.Logger
}

func New(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{Logger: logger}
}

// Ingest classifies filename by suffix and parses the file at path.
// ok is false when the file is skipped (text that is not valid UTF-8).
// A malformed CSV fails with analysis.ErrInvalidInput.
func (in *Ingestor) Ingest(ctx context.Context, path, filename string) (domain.Item, bool, error) {
	switch classify(filename) {
	case domain.KindDataFrame:
		f, err := readCSV(path)
		if err != nil {
			return domain.Item{}, false, fmt.Errorf("%w: %s: %v", analysis.ErrInvalidInput, filename, err)
		}
		return domain.Item{Kind: domain.KindDataFrame, Value: f}, true, nil

	case domain.KindImage:
		return domain.Item{Kind: domain.KindImage, Value: path, Info: in.imageInfo(path, filename)}, true, nil

	case kindPDF:
		return domain.Item{Kind: domain.KindText, Value: in.pdfText(path, filename)}, true, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Item{}, false, err
	}
	if !utf8.Valid(raw) {
		in.Logger.WarnContext(ctx, "skipping file that is not valid UTF-8", "filename", filename)
		return domain.Item{}, false, nil
	}
	return domain.Item{Kind: domain.KindText, Value: string(raw)}, true, nil
}

const kindPDF domain.Kind = "pdf"

// classify: .csv dan .pdf case-sensitive, ekstensi gambar tidak.
func classify(filename string) domain.Kind {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return domain.KindDataFrame
	case strings.HasSuffix(filename, ".pdf"):
		return kindPDF
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return domain.KindImage
	}
	return domain.KindText
}

func readCSV(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return frame.ReadCSV(f)
}

// pdfText concatenates the plain text of every page, each followed by "\n".
// Any failure yields "".
func (in *Ingestor) pdfText(path, filename string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			in.Logger.Error("pdf parser panicked", "filename", filename, "panic", r)
			text = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		in.Logger.Error("error reading pdf", "filename", filename, "err", err)
		return ""
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if !p.V.IsNull() {
			s, err := p.GetPlainText(nil)
			if err != nil {
				in.Logger.Error("error reading pdf", "filename", filename, "page", i, "err", err)
				return ""
			}
			b.WriteString(s)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (in *Ingestor) imageInfo(path, filename string) map[string]any {
	f, err := os.Open(path)
	if err != nil {
		in.Logger.Error("error processing image", "filename", filename, "err", err)
		return map[string]any{}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		in.Logger.Error("error processing image", "filename", filename, "err", err)
		return map[string]any{}
	}
	return map[string]any{
		"format": strings.ToUpper(format),
		"size":   []int{cfg.Width, cfg.Height},
		"mode":   colorMode(cfg.ColorModel),
	}
}

// colorMode maps a color model to the usual short mode names.
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.YCbCrModel:
		return "RGB"
	case color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "LA"
	}
	return "RGB"
}
