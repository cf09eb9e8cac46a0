package ocr

import "strings"

// SegmentationMode tells the recognizer how the page is laid out. Values
// match Tesseract's page segmentation modes.
type SegmentationMode int

const (
	ModeAuto         SegmentationMode = 3
	ModeSingleColumn SegmentationMode = 4
	ModeSingleBlock  SegmentationMode = 6
	ModeSingleLine   SegmentationMode = 7
	ModeSingleWord   SegmentationMode = 8
)

func (m SegmentationMode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeSingleColumn:
		return "single-column"
	case ModeSingleBlock:
		return "single-block"
	case ModeSingleLine:
		return "single-line"
	case ModeSingleWord:
		return "single-word"
	default:
		return "unknown"
	}
}

// Configuration is a named combination of segmentation mode and language
// profile passed to the recognizer.
type Configuration struct {
	Name      string           `json:"name"`
	Mode      SegmentationMode `json:"mode"`
	Languages []string         `json:"languages"`
}

// LanguageProfile returns the languages joined the way Tesseract expects
// them ("eng+fra").
func (c Configuration) LanguageProfile() string {
	return strings.Join(c.Languages, "+")
}

// DefaultConfigurations returns the built-in configuration menu in
// declaration order. With no languages, "eng" is used.
func DefaultConfigurations(languages ...string) []Configuration {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	menu := []struct {
		name string
		mode SegmentationMode
	}{
		{"standard", ModeSingleBlock},
		{"word", ModeSingleWord},
		{"column", ModeSingleColumn},
		{"auto", ModeAuto},
		{"line", ModeSingleLine},
	}

	out := make([]Configuration, len(menu))
	for i, m := range menu {
		langs := make([]string, len(languages))
		copy(langs, languages)
		out[i] = Configuration{Name: m.name, Mode: m.mode, Languages: langs}
	}
	return out
}
