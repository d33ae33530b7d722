package models

import "time"

// TeamRequestStatus представляет статусы запроса, соответствующие ENUM в БД.
type TeamRequestStatus string

const (
	RequestPending  TeamRequestStatus = "pending"
	RequestAccepted TeamRequestStatus = "accepted"
	RequestRejected TeamRequestStatus = "rejected"
)

func (s TeamRequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	}
	return false
}

// RequestDecision — ответ получателя на входящий запрос.
type RequestDecision string

const (
	DecisionAccept RequestDecision = "accept"
	DecisionReject RequestDecision = "reject"
)

// Status возвращает статус, в который переводит запрос данное решение.
// Для неизвестного решения ok == false.
func (d RequestDecision) Status() (TeamRequestStatus, bool) {
	switch d {
	case DecisionAccept:
		return RequestAccepted, true
	case DecisionReject:
		return RequestRejected, true
	}
	return "", false
}

type TeamRequest struct {
	ID         int               `json:"id" db:"id"`
	SenderID   int               `json:"sender_id" db:"sender_id"`
	ReceiverID int               `json:"receiver_id" db:"receiver_id"`
	Message    string            `json:"message" db:"message"`
	Status     TeamRequestStatus `json:"status" db:"status"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`

	// Опциональные связанные профили (не мапятся напрямую)
	Sender   *Profile `json:"sender,omitempty" db:"-"`
	Receiver *Profile `json:"receiver,omitempty" db:"-"`
}

// CounterpartID возвращает идентификатор второй стороны запроса
// относительно пользователя viewerID.
func (r *TeamRequest) CounterpartID(viewerID int) int {
	if r.SenderID == viewerID {
		return r.ReceiverID
	}
	return r.SenderID
}
