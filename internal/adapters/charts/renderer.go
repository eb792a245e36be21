package charts

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"tg-insights/internal/domain"
)

const (
	defaultWidth  = 1000
	defaultHeight = 600

	marginLeft   = 60.0
	marginRight  = 30.0
	marginTop    = 60.0
	marginBottom = 60.0
)

// Renderer рисует столбчатые диаграммы распределений в PNG.
// Подписи осей и заголовок выводятся, только если задан путь к TTF-шрифту.
type Renderer struct {
	width    int
	height   int
	fontPath string
}

var _ domain.ChartRenderer = (*Renderer)(nil)

// NewRenderer создаёт рендерер. fontPath может быть пустым.
func NewRenderer(fontPath string) *Renderer {
	return &Renderer{width: defaultWidth, height: defaultHeight, fontPath: fontPath}
}

// Render строит диаграмму по распределению и возвращает PNG.
func (r *Renderer) Render(name, title string, dist []domain.Bucket) ([]byte, error) {
	if len(dist) == 0 {
		return nil, fmt.Errorf("график %s: пустое распределение", name)
	}
	maxCount := 0
	for _, bucket := range dist {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
		}
	}
	if maxCount == 0 {
		return nil, fmt.Errorf("график %s: распределение без значений", name)
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	withText := false
	if r.fontPath != "" {
		if err := dc.LoadFontFace(r.fontPath, 16); err == nil {
			withText = true
		}
	}

	plotW := float64(r.width) - marginLeft - marginRight
	plotH := float64(r.height) - marginTop - marginBottom
	barW := plotW / float64(len(dist))

	dc.SetRGB(0.27, 0.45, 0.77)
	for i, bucket := range dist {
		h := plotH * float64(bucket.Count) / float64(maxCount)
		x := marginLeft + float64(i)*barW
		y := marginTop + plotH - h
		dc.DrawRectangle(x+barW*0.1, y, barW*0.8, h)
		dc.Fill()
	}

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(2)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.Stroke()

	if withText {
		dc.DrawStringAnchored(title, float64(r.width)/2, marginTop/2, 0.5, 0.5)
		step := 1
		if len(dist) > 24 {
			step = len(dist)/24 + 1
		}
		for i, bucket := range dist {
			if i%step != 0 {
				continue
			}
			x := marginLeft + float64(i)*barW + barW/2
			dc.DrawStringAnchored(bucket.Label, x, marginTop+plotH+20, 0.5, 0.5)
		}
		dc.DrawStringAnchored(fmt.Sprintf("%d", maxCount), marginLeft-20, marginTop, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("график %s: кодирование PNG: %w", name, err)
	}
	return buf.Bytes(), nil
}
