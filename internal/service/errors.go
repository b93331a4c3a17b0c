// errors.go — ошибки конвейера формирования отчёта.
package service

import (
	"context"
	"errors"
	"fmt"
)

// Kind — класс фатальной ошибки конвейера.
type Kind uint8

const (
	// KindStorage — не удалось записать фото или артефакт
	KindStorage Kind = iota + 1
	// KindRender — отказ шаблонизатора, разрешения ассетов или печати
	KindRender
)

// String возвращает имя класса ошибки.
func (k Kind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindRender:
		return "render"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Сентинелы для errors.Is.
var (
	ErrStorageFailure = errors.New("ошибка хранилища")
	ErrRenderFailure  = errors.New("ошибка рендеринга")
)

// Error — фатальная ошибка конвейера. Заявка отклоняется целиком.
type Error struct {
	Kind Kind
	// Op — этап конвейера, на котором произошла ошибка
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.sentinel(), e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindStorage:
		return ErrStorageFailure
	case KindRender:
		return ErrRenderFailure
	}
	panic(fmt.Sprintf("service: неизвестный класс ошибки %d", uint8(e.Kind)))
}

func storageError(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

func renderError(op string, err error) *Error {
	return &Error{Kind: KindRender, Op: op, Err: err}
}

// IsCancelled сообщает, что заявка прервана вызывающим кодом
// (отмена или дедлайн контекста), а не отказом хранилища или печати.
func IsCancelled(err error) bool {
	if errors.Is(err, ErrStorageFailure) || errors.Is(err, ErrRenderFailure) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func cancelled(op string, err error) error {
	return fmt.Errorf("%s: заявка прервана: %w", op, err)
}
