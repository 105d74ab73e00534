package models

import (
	"errors"
	"strings"
)

// RfxType тип события, хранится в верхнем регистре
type RfxType string

const (
	RfxTypeRFQ RfxType = "RFQ"
	RfxTypeRFP RfxType = "RFP"
	RfxTypeRFI RfxType = "RFI"
	RfxTypeITT RfxType = "ITT"
	RfxTypeRFT RfxType = "RFT"
)

// ParseRfxType принимает коды в любом регистре
func ParseRfxType(s string) (RfxType, bool) {
	switch t := RfxType(strings.ToUpper(strings.TrimSpace(s))); t {
	case RfxTypeRFQ, RfxTypeRFP, RfxTypeRFI, RfxTypeITT, RfxTypeRFT:
		return t, true
	}
	return "", false
}

// EventStatus статус события
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventOpen      EventStatus = "open"
	EventClosed    EventStatus = "closed"
	EventAwarded   EventStatus = "awarded"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) String() string { return string(s) }

// ParseEventStatus принимает статус в любом регистре
func ParseEventStatus(s string) (EventStatus, bool) {
	st := EventStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := eventTransitions[st]; !ok {
		return "", false
	}
	return st, true
}

// AcceptsResponses сообщает, можно ли подавать предложения в этом статусе
func (s EventStatus) AcceptsResponses() bool {
	return s != EventClosed && s != EventCancelled
}

// ResponseStatus статус предложения
type ResponseStatus string

const (
	ResponseSubmitted ResponseStatus = "submitted"
	ResponseAwarded   ResponseStatus = "awarded"
	ResponseClosed    ResponseStatus = "closed"
)

func (s ResponseStatus) String() string { return string(s) }

var ErrInvalidTransition = errors.New("invalid status transition")

// awarded достижим только через award, который тоже сверяется с этой таблицей
var eventTransitions = map[EventStatus]map[EventStatus]bool{
	EventDraft: {
		EventOpen:      true,
		EventCancelled: true,
	},
	EventOpen: {
		EventDraft:     true,
		EventClosed:    true,
		EventCancelled: true,
		EventAwarded:   true,
	},
	EventClosed: {
		EventOpen:      true,
		EventCancelled: true,
		EventAwarded:   true,
	},
	EventAwarded:   {},
	EventCancelled: {},
}

var responseTransitions = map[ResponseStatus]map[ResponseStatus]bool{
	ResponseSubmitted: {
		ResponseAwarded: true,
		ResponseClosed:  true,
	},
	ResponseAwarded: {},
	ResponseClosed:  {},
}

// Terminal сообщает, что из статуса нет переходов
func (s EventStatus) Terminal() bool {
	return len(eventTransitions[s]) == 0
}

// CanTransition проверяет переход события между статусами.
// Повтор текущего статуса разрешен, если он не конечный
func CanTransition(from, to EventStatus) bool {
	next, ok := eventTransitions[from]
	if !ok {
		return false
	}
	if from == to {
		return !from.Terminal()
	}
	return next[to]
}

// TransitionSources возвращает статусы, из которых можно перейти в `to`
func TransitionSources(to EventStatus) []EventStatus {
	var sources []EventStatus
	for _, from := range []EventStatus{EventDraft, EventOpen, EventClosed, EventAwarded, EventCancelled} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// CanTransitionResponse проверяет переход предложения между статусами
func CanTransitionResponse(from, to ResponseStatus) bool {
	return responseTransitions[from][to]
}
