// reference.go — генерация идентификатора отчёта и имени артефакта.
package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// DefaultReferencePrefix — префикс идентификатора отчёта по умолчанию.
const DefaultReferencePrefix = "RMS"

// suffixAlphabet — алфавит случайного суффикса (base36, верхний регистр).
const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// suffixCutoff — наибольшее кратное длине алфавита, не превышающее 256.
// Байты не меньше него отбрасываются, чтобы символы были равновероятны.
const suffixCutoff = 256 - 256%len(suffixAlphabet)

// suffixLen — длина суффикса: 36^6 ≈ 2.2·10^9 вариантов на день.
const suffixLen = 6

// ReportIDs — идентификаторы одного отчёта.
type ReportIDs struct {
	// Reference — человекочитаемый идентификатор: PREFIX-YYYYMMDD-XXXXXX
	Reference string
	// Artifact — имя файла отчёта, не связанное с Reference
	Artifact string
	// GeneratedAt — момент генерации (UTC)
	GeneratedAt time.Time
}

// ReferenceGenerator — генератор идентификаторов отчётов.
// Коллизии с существующими файлами не проверяются.
type ReferenceGenerator struct {
	prefix string
	now    func() time.Time
	random io.Reader
}

// NewReferenceGenerator создаёт генератор с заданным префиксом.
func NewReferenceGenerator(prefix string) *ReferenceGenerator {
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}
	return &ReferenceGenerator{
		prefix: prefix,
		now:    time.Now,
		random: rand.Reader,
	}
}

// Next выдаёт новую пару идентификаторов.
func (g *ReferenceGenerator) Next() (ReportIDs, error) {
	now := g.now().UTC()

	suffix, err := g.suffix()
	if err != nil {
		return ReportIDs{}, err
	}

	return ReportIDs{
		Reference:   fmt.Sprintf("%s-%s-%s", g.prefix, now.Format("20060102"), suffix),
		Artifact:    "rms_report_" + uuid.NewString() + ".pdf",
		GeneratedAt: now,
	}, nil
}

// suffix выбирает символы алфавита выборкой с отбраковкой.
func (g *ReferenceGenerator) suffix() ([]byte, error) {
	out := make([]byte, 0, suffixLen)
	buf := make([]byte, suffixLen*2)
	for len(out) < suffixLen {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return nil, fmt.Errorf("ошибка генерации суффикса: %w", err)
		}
		for _, b := range buf {
			if int(b) >= suffixCutoff {
				continue
			}
			out = append(out, suffixAlphabet[int(b)%len(suffixAlphabet)])
			if len(out) == suffixLen {
				break
			}
		}
	}
	return out, nil
}
