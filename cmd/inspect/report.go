package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/inlinedst/errors"
)

// WordInfo is one storage word as shown in layouts and reports.
type WordInfo struct {
	Hex    string `cbor:"2,keyasint"`
	Region string `cbor:"3,keyasint"`
	Index  int    `cbor:"1,keyasint"`
}

// Report is the machine-readable result of an inspector run.
type Report struct {
	Kind     string     `cbor:"1,keyasint"`
	Storage  string     `cbor:"2,keyasint"`
	Elem     string     `cbor:"4,keyasint,omitempty"`
	Value    string     `cbor:"7,keyasint"`
	Steps    []Step     `cbor:"5,keyasint"`
	Words    []WordInfo `cbor:"6,keyasint"`
	WordSize int        `cbor:"3,keyasint"`
}

// cborEncMode encodes reports canonically so equal runs give equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("inspect: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// NewReport captures the session's current state.
func NewReport(s *Session) *Report {
	r := &Report{
		Kind:     s.cfg.Kind,
		Storage:  s.cfg.Storage,
		WordSize: s.cfg.WordSize,
		Steps:    s.Steps,
		Words:    s.Layout(),
		Value:    s.Value(),
	}
	if s.cfg.Kind != "text" {
		r.Elem = s.cfg.Elem
	}
	return r
}

// MarshalReport serializes a Report to CBOR bytes.
func MarshalReport(r *Report) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalReport deserializes a Report from CBOR bytes.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "unmarshal report")
	}
	return &r, nil
}

// describeWords splits b into words and tags each with its region.
func describeWords(b []byte, wordSize int, regions []Region) []WordInfo {
	words := make([]WordInfo, len(b)/wordSize)
	for i := range words {
		words[i] = WordInfo{
			Index:  i,
			Hex:    hex.EncodeToString(b[i*wordSize : (i+1)*wordSize]),
			Region: "free",
		}
		for _, r := range regions {
			if i >= r.Start && i < r.End {
				words[i].Region = r.Name
				break
			}
		}
	}
	return words
}

var regionStyles = map[string]lipgloss.Style{
	"data":  lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
	"meta":  lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	"items": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD580")),
	"free":  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
}

// renderWords writes one line per word. Colors are used only if color is
// set.
func renderWords(w io.Writer, words []WordInfo, color bool) {
	if len(words) == 0 {
		fmt.Fprintln(w, "  (no words)")
		return
	}
	width := len(fmt.Sprint(len(words) - 1))
	for _, word := range words {
		line := fmt.Sprintf("  %*d  %s  %s", width, word.Index, word.Hex, word.Region)
		if color {
			line = regionStyles[word.Region].Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

// renderSteps writes one line per step.
func renderSteps(w io.Writer, steps []Step) {
	for _, s := range steps {
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(s.Op)
		if s.Result != "" {
			b.WriteString(" -> ")
			b.WriteString(s.Result)
		}
		if s.Err != "" {
			b.WriteString(" !! ")
			b.WriteString(s.Err)
		}
		fmt.Fprintln(w, b.String())
	}
}
