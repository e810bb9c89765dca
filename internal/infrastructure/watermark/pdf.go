package watermark

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pdfPositions are the independent stamp positions per page. Multiple
// positions make the mark survive partial redaction of a page.
var pdfPositions = []string{"tl", "c", "br"}

// pdfStamper stamps the watermark text at multiple positions on every page
type pdfStamper struct {
	text    string
	opacity float64
	angle   float64
}

func (s *pdfStamper) stamp(original []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	current := original
	for _, pos := range pdfPositions {
		desc := fmt.Sprintf("fontname:Helvetica, points:18, scale:0.4 rel, rot:%d, op:%.2f, pos:%s, fillc:#7f7f7f",
			int(s.angle), s.opacity, pos)
		wm, err := api.TextWatermark(s.text, desc, true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("failed to build watermark %q: %w", pos, err)
		}

		var out bytes.Buffer
		if err := api.AddWatermarks(bytes.NewReader(current), &out, nil, wm, conf); err != nil {
			return nil, fmt.Errorf("failed to stamp watermark %q: %w", pos, err)
		}
		current = out.Bytes()
	}
	return current, nil
}
