// Package local holds user-facing text in several languages.
package local

import "fmt"

type Language string

const (
	Eng = Language("en")
	Rus = Language("ru")
)

type Translation struct {
	language Language
	text     string
}

func NewTrans(language Language, text string) Translation {
	return Translation{
		language: language,
		text:     text,
	}
}

// TextSet is one user-facing message with an English default and optional
// translations.
type TextSet struct {
	Default      string
	translations map[Language]string
}

func NewSet(defaultText string, translations ...Translation) TextSet {
	set := TextSet{
		Default:      defaultText,
		translations: make(map[Language]string),
	}
	for _, translation := range translations {
		set.translations[translation.language] = translation.text
	}
	return set
}

func (s TextSet) Text(language Language) string {
	if text, ok := s.translations[language]; ok {
		return text
	}
	return s.Default
}

func (s TextSet) Format(language Language, a ...any) string {
	return fmt.Sprintf(s.Text(language), a...)
}
