// Package format renders handler results as WhatsApp-safe text.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"skara-bot/internal/classifier"
	"skara-bot/internal/geo"
)

const (
	// EscapeMarker is placed in front of every markup trigger character.
	EscapeMarker = `\`

	// LabelPlaceholder replaces an absent label.
	LabelPlaceholder = "-"

	// UncertainSuffix is appended to the parent line when the service flags
	// the prediction as uncertain.
	UncertainSuffix = " (ragu)"
)

var (
	markupTrigger   = regexp.MustCompile("([\\\\*_`~>])")
	massMention     = regexp.MustCompile(`(?i)@everyone|@here`)
	trailingBlanks  = regexp.MustCompile(`[ \t]+\n`)
	markupTriggerCh = "\\*_`~>"
)

// Escape neutralizes WhatsApp inline markup (bold, italic, strikethrough,
// monospace, quote) and mass mentions in user or model supplied text.
// The escape marker itself is escaped so input cannot pre-escape a trigger.
func Escape(s string) string {
	s = markupTrigger.ReplaceAllString(s, EscapeMarker+"$1")
	s = massMention.ReplaceAllString(s, "[mention]")
	s = trailingBlanks.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// isTrigger reports whether r is one of the markup trigger characters,
// the escape marker included.
func isTrigger(r rune) bool {
	return strings.ContainsRune(markupTriggerCh, r)
}

// Label turns a service label such as "botol_plastik" into "botol plastik".
// Absent or blank labels become LabelPlaceholder.
func Label(label *string) string {
	if label == nil {
		return LabelPlaceholder
	}
	nice := strings.TrimSpace(strings.ReplaceAll(*label, "_", " "))
	if nice == "" {
		return LabelPlaceholder
	}
	return nice
}

// Percent renders a 0..1 confidence with one decimal place. nil is 0.0%.
func Percent(confidence *float64) string {
	var v float64
	if confidence != nil {
		v = *confidence
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// Classification renders the classifier result followed by the recommendation.
func Classification(res *classifier.Result, recommendation string) string {
	if res == nil {
		res = &classifier.Result{}
	}

	var (
		parentLabel, subLabel *string
		parentConf, subConf   *float64
		uncertain             bool
	)
	if p := res.Parent; p != nil {
		parentLabel, parentConf = p.Label, p.Confidence
		uncertain = p.Uncertain != nil && *p.Uncertain
	}
	if s := res.Sub; s != nil {
		subLabel, subConf = s.Label, s.Confidence
	}

	var b strings.Builder
	fmt.Fprintf(&b, "♻️ Klasifikasi: %s → %s\n", Escape(Label(parentLabel)), Escape(Label(subLabel)))
	fmt.Fprintf(&b, "• Parent: %s", Percent(parentConf))
	if uncertain {
		b.WriteString(UncertainSuffix)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "• Sub   : %s\n", Percent(subConf))

	if len(res.TopSubs) > 0 {
		b.WriteString("\nTop-3 sub:\n")
		b.WriteString(RankedLabels(res.TopSubs))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n💡 Rekomendasi:\n%s", Escape(recommendation))
	return b.String()
}

// RankedLabels renders labels as a newline separated, 1-indexed list in the
// order given.
func RankedLabels(labels []classifier.Prediction) string {
	lines := make([]string, 0, len(labels))
	for i, l := range labels {
		lines = append(lines, fmt.Sprintf("%d) %s (%s)", i+1, Escape(Label(l.Label)), Percent(l.Confidence)))
	}
	return strings.Join(lines, "\n")
}

// Nearest renders the closest facility, or the not-found message.
func Nearest(m geo.Match, ok bool) string {
	if !ok {
		return "❌ Tidak ditemukan TPS terdekat."
	}
	return fmt.Sprintf("📍 TPS Terdekat:\n%s\nJarak: %.2f km\n%s",
		Escape(m.Facility.Name), m.DistanceKm, m.Facility.Link)
}

// FacilityList renders every facility with its map link.
func FacilityList(facilities []geo.Facility) string {
	if len(facilities) == 0 {
		return "Belum ada lokasi TPS yang terdaftar."
	}
	items := make([]string, 0, len(facilities))
	for _, f := range facilities {
		items = append(items, fmt.Sprintf("📍 %s\n%s", Escape(f.Name), f.Link))
	}
	return "Daftar lokasi TPS:\n\n" + strings.Join(items, "\n\n")
}

// Greeting is the introduction sent for greeting phrases.
func Greeting() string {
	return "👋 Hai! Saya *SKARA* (Sampah Karang Rejo Assistant).\n\n" +
		"Saya bisa:\n" +
		"1. 📸 Deteksi jenis sampah dari gambar\n" +
		"2. 💡 Rekomendasi pengelolaan sampah\n" +
		"3. 🗺️ Tunjukkan TPS terdekat (kirim lokasi)\n\n" +
		"Kirim gambar sampah 📷 atau share lokasi 📍 ya!"
}

// Guidance answers messages that match no handler.
func Guidance() string {
	return "Saya belum mengerti pesan ini 🙏\n" +
		"Ketik halo untuk melihat fitur, #tps untuk daftar TPS, " +
		"kirim gambar sampah 📷, atau share lokasi 📍."
}
