package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid      = errors.New("некорректные параметры запроса")
	ErrPatientNotFound   = errors.New("пациент не найден")
	ErrPhoneExist        = errors.New("этот номер телефона уже зарегистрирован")
	ErrPasswordIncorrect = errors.New("неверный телефон или пароль")
	ErrMessagesBlocked   = errors.New("отправка сообщений заблокирована администратором")

	ErrLetterNotFound      = errors.New("письмо не найдено")
	ErrSubjectTooShort     = errors.New("тема письма слишком короткая")
	ErrLetterContentShort  = errors.New("текст сообщения должен содержать не менее 10 символов")
	ErrLetterNoReply       = errors.New("дописать можно только после ответа главврача")
	ErrChatNotFound        = errors.New("чат не найден")
	ErrChatAlreadyOpen     = errors.New("у вас уже есть открытый чат")
	ErrChatClosed          = errors.New("чат закрыт")
	ErrChatMessageEmpty    = errors.New("сообщение не может быть пустым")
	ErrChatOpenShort       = errors.New("опишите вопрос чуть подробнее")
	ErrUnknownAction       = errors.New("неизвестное действие")

	ErrForbidden    = errors.New("недостаточно прав для этого действия")
	ErrUnauthorized = errors.New("требуется авторизация")

	UnExpectedError = errors.New("внутренняя ошибка, попробуйте позже")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:      BadRequest,
	ErrPatientNotFound:   NotFound,
	ErrPhoneExist:        BadRequest,
	ErrPasswordIncorrect: Unauthorized,
	ErrMessagesBlocked:   Forbidden,

	ErrLetterNotFound:     NotFound,
	ErrSubjectTooShort:    BadRequest,
	ErrLetterContentShort: BadRequest,
	ErrLetterNoReply:      BadRequest,
	ErrChatNotFound:       NotFound,
	ErrChatAlreadyOpen:    BadRequest,
	ErrChatClosed:         BadRequest,
	ErrChatMessageEmpty:   BadRequest,
	ErrChatOpenShort:      BadRequest,
	ErrUnknownAction:      BadRequest,

	ErrForbidden:    Forbidden,
	ErrUnauthorized: Unauthorized,

	UnExpectedError: InternalServerError,
}
