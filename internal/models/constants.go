package models

// Роли пользователей из JWT токена.
const (
	RoleUser  = "USER"
	RoleTutor = "TUTOR"
	RoleAdmin = "ADMIN"
)

// PostStatus константы статусов объявлений
const (
	PostStatusOpen     = "OPEN"
	PostStatusReported = "REPORTED"
	PostStatusSolved   = "SOLVED"
	PostStatusClosed   = "CLOSED"
)

// BidStatus константы статусов откликов
const (
	BidStatusPending  = "PENDING"
	BidStatusAccepted = "ACCEPTED"
	BidStatusRejected = "REJECTED"
)

// QuestionLevel константы сложности вопроса
const (
	QuestionLevelEasy     = "EASY"
	QuestionLevelMedium   = "MEDIUM"
	QuestionLevelHard     = "HARD"
	QuestionLevelVeryHard = "VERY_HARD"
)

// RoomStatus константы статусов комнат
const (
	RoomStatusInProgress     = "IN_PROGRESS"
	RoomStatusSubmitted      = "SUBMITTED"
	RoomStatusConfirmed      = "CONFIRMED"
	RoomStatusResolvedNormal = "RESOLVED_NORMAL"
	RoomStatusResolvedRefund = "RESOLVED_REFUND"
)

// ValidPostStatuses список валидных статусов объявлений
var ValidPostStatuses = map[string]struct{}{
	PostStatusOpen:     {},
	PostStatusReported: {},
	PostStatusSolved:   {},
	PostStatusClosed:   {},
}

// ValidBidStatuses список валидных статусов откликов
var ValidBidStatuses = map[string]struct{}{
	BidStatusPending:  {},
	BidStatusAccepted: {},
	BidStatusRejected: {},
}

// ValidQuestionLevels список валидных уровней сложности
var ValidQuestionLevels = map[string]struct{}{
	QuestionLevelEasy:     {},
	QuestionLevelMedium:   {},
	QuestionLevelHard:     {},
	QuestionLevelVeryHard: {},
}

// ValidRoomStatuses список валидных статусов комнат
var ValidRoomStatuses = map[string]struct{}{
	RoomStatusInProgress:     {},
	RoomStatusSubmitted:      {},
	RoomStatusConfirmed:      {},
	RoomStatusResolvedNormal: {},
	RoomStatusResolvedRefund: {},
}

// roomStatusRank задаёт порядок статусов комнаты. Переходы допускаются
// только вперёд по этому порядку.
var roomStatusRank = map[string]int{
	RoomStatusInProgress:     0,
	RoomStatusSubmitted:      1,
	RoomStatusConfirmed:      2,
	RoomStatusResolvedNormal: 3,
	RoomStatusResolvedRefund: 3,
}

// RoomStatusRank возвращает позицию статуса в жизненном цикле комнаты.
func RoomStatusRank(status string) int {
	rank, ok := roomStatusRank[status]
	if !ok {
		return -1
	}
	return rank
}

// IsTerminalRoomStatus сообщает, является ли статус комнаты финальным.
func IsTerminalRoomStatus(status string) bool {
	return status == RoomStatusResolvedNormal || status == RoomStatusResolvedRefund
}

// allowedPostTransitions описывает разрешённые переходы статусов объявления.
var allowedPostTransitions = map[string]map[string]struct{}{
	PostStatusOpen: {
		PostStatusReported: {},
		PostStatusClosed:   {},
	},
	PostStatusReported: {
		PostStatusSolved: {},
		PostStatusClosed: {},
	},
}

// IsAllowedPostTransition проверяет переход статуса объявления.
func IsAllowedPostTransition(from, to string) bool {
	targets, ok := allowedPostTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}
