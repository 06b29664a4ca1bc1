// Package report renders a scan session's discovered BSSes into a PDF,
// the scan-domain analogue of the teacher's executive security summary.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/airlayer/scand/pkg/ieee80211"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// Session is the input to a report: everything discovered on one device
// between Start and End.
type Session struct {
	// ID correlates this report with the scan requests that produced
	// it. Export fills it in with a fresh UUID if left empty.
	ID         string
	Title      string
	DeviceName string
	Start      time.Time
	End        time.Time
	BSSes      []*ieee80211.BSS
}

// Exporter renders Sessions to PDF.
type Exporter struct{}

// NewExporter returns a PDF report exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders s into a PDF document, ranked highest-Rank first.
func (e *Exporter) Export(s *Session) ([]byte, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	ranked := append([]*ieee80211.BSS(nil), s.BSSes...)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Rank > ranked[j].Rank })

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, s)
	e.addSummary(pdf, ranked)
	e.addBSSTable(pdf, ranked)
	e.addFooter(pdf, s.ID)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) addHeader(pdf *gofpdf.Fpdf, s *Session) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102)
	title := s.Title
	if title == "" {
		title = "Scan Session Report"
	}
	pdf.CellFormat(0, 15, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, s.DeviceName, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	if !s.Start.IsZero() {
		period := fmt.Sprintf("Session: %s to %s", s.Start.Format("2006-01-02 15:04"), s.End.Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 6, period, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *Exporter) addSummary(pdf *gofpdf.Fpdf, bsses []*ieee80211.BSS) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	hidden, ht, vht, hs20 := 0, 0, 0, 0
	for _, b := range bsses {
		if b.Hidden() {
			hidden++
		}
		if b.HTCapable {
			ht++
		}
		if b.VHTCapable {
			vht++
		}
		if b.HS20Capable {
			hs20++
		}
	}

	stats := []struct {
		label string
		value string
	}{
		{"Total BSSes", fmt.Sprintf("%d", len(bsses))},
		{"Hidden SSIDs", fmt.Sprintf("%d", hidden)},
		{"HT Capable", fmt.Sprintf("%d", ht)},
		{"VHT Capable", fmt.Sprintf("%d", vht)},
		{"Hotspot 2.0", fmt.Sprintf("%d", hs20)},
	}

	pdf.SetFont("Arial", "", 11)
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(35, 7, stat.value, "", 0, "R", false, 0, "")
		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(10)
}

func (e *Exporter) addBSSTable(pdf *gofpdf.Fpdf, bsses []*ieee80211.BSS) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Discovered Access Points", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(bsses) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No access points discovered", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(35, 8, "BSSID", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "SSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Freq", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Signal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Security", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Rank", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, b := range bsses {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		ssid := string(b.SSID)
		if b.Hidden() {
			ssid = "(hidden)"
		}
		pdf.CellFormat(35, 7, b.BSSIDString(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 7, ssid, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", b.Frequency), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f dBm", float64(b.SignalMBm)/100), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, securityLabel(b), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", b.Rank), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func securityLabel(b *ieee80211.BSS) string {
	switch {
	case len(b.RSNE) > 0:
		return "RSN"
	case len(b.WPA) > 0:
		return "WPA"
	case len(b.OSEN) > 0:
		return "OSEN"
	default:
		return "OPEN"
	}
}

func (e *Exporter) addFooter(pdf *gofpdf.Fpdf, reportID string) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by scand, report %s", reportID), "", 1, "C", false, 0, "")
}
