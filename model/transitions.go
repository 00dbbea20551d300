package model

// Legal status changes per entity. Anything absent is rejected, which makes
// removed (grants) and approved/rejected (requests, items) terminal.
var grantTransitions = map[GrantStatus][]GrantStatus{
	GrantActive:   {GrantToRemove, GrantRemoved},
	GrantToRemove: {GrantActive, GrantRemoved},
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestRequested: {RequestApproved, RequestRejected},
}

func CanTransitionGrant(from, to GrantStatus) bool {
	for _, next := range grantTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionRequest covers both requests and their items.
func CanTransitionRequest(from, to RequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DeriveRequestStatus aggregates item statuses: any rejected item rejects the
// request, any undecided item keeps it requested, otherwise it is approved.
func DeriveRequestStatus(items []AccessRequestItem) RequestStatus {
	if len(items) == 0 {
		return RequestRequested
	}
	pending := false
	for _, item := range items {
		switch item.Status {
		case RequestRejected:
			return RequestRejected
		case RequestRequested:
			pending = true
		}
	}
	if pending {
		return RequestRequested
	}
	return RequestApproved
}
