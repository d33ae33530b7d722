package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamRequestStatusValid(t *testing.T) {
	assert.True(t, RequestPending.Valid())
	assert.True(t, RequestAccepted.Valid())
	assert.True(t, RequestRejected.Valid())

	assert.False(t, TeamRequestStatus("").Valid())
	assert.False(t, TeamRequestStatus("cancelled").Valid())
	assert.False(t, TeamRequestStatus("PENDING").Valid())
}

func TestRequestDecisionStatus(t *testing.T) {
	status, ok := DecisionAccept.Status()
	assert.True(t, ok)
	assert.Equal(t, RequestAccepted, status)

	status, ok = DecisionReject.Status()
	assert.True(t, ok)
	assert.Equal(t, RequestRejected, status)

	_, ok = RequestDecision("maybe").Status()
	assert.False(t, ok)

	_, ok = RequestDecision("").Status()
	assert.False(t, ok)
}

func TestTeamRequestCounterpartID(t *testing.T) {
	request := &TeamRequest{SenderID: 7, ReceiverID: 12}

	assert.Equal(t, 12, request.CounterpartID(7))
	assert.Equal(t, 7, request.CounterpartID(12))
}
