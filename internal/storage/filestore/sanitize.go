package filestore

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// PlaceholderName — имя, которое получает файл, если от исходного
// имени ничего не осталось.
const PlaceholderName = "upload"

// inertRune заменяет символы, похожие на разделители пути.
const inertRune = '_'

// Sanitize превращает присланное клиентом имя файла в безопасный
// сегмент пути. Отбрасывает директории (и "/", и "\"), заменяет
// юникодные двойники разделителей, удаляет управляющие и bidi-символы,
// обрезает пробелы и приводит к NFC. Никогда не возвращает пустую
// строку, "." или "..". Идемпотентна: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.Is(unicode.Bidi_Control, r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, name)

	// Только последний сегмент после любого ASCII-разделителя
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	name = strings.Map(func(r rune) rune {
		if isSeparatorLookalike(r) {
			return inertRune
		}
		return r
	}, name)

	name = strings.TrimSpace(name)
	name = norm.NFC.String(name)
	name = strings.TrimSpace(name)

	if strings.Trim(name, ".") == "" {
		return PlaceholderName
	}
	return name
}

// isSeparatorLookalike — юникодные символы, которые отображаются как
// слэш и могут быть приняты за разделитель другими инструментами.
func isSeparatorLookalike(r rune) bool {
	switch r {
	case '⁄', // FRACTION SLASH
		'∕', // DIVISION SLASH
		'⧸', // BIG SOLIDUS
		'⧹', // BIG REVERSE SOLIDUS
		'﹨', // SMALL REVERSE SOLIDUS
		'／', // FULLWIDTH SOLIDUS
		'＼': // FULLWIDTH REVERSE SOLIDUS
		return true
	}
	return false
}
