package service

import "errors"

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeIgnored = "ignored"
)

// Messages returned to the caller. They are part of the wire contract.
const (
	MsgNoData            = "No data found"
	MsgIdentMissing      = "Tracker identifier missing"
	MsgBlacklisted       = "Coordinates are blacklisted"
	MsgRequestCancelled  = "Request cancelled"
	batchStatusProcessed = "processed"
	batchStatusFailed    = "failed"
)

// ErrNoData rejects a batch that is not a non-empty JSON array.
var ErrNoData = errors.New("no data found")

// RecordOutcome is the terminal state of one input record.
type RecordOutcome struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	TrackerIdent string `json:"tracker_ident,omitempty"`
}

func succeeded(ident string) RecordOutcome {
	return RecordOutcome{Status: OutcomeSuccess, TrackerIdent: ident}
}

func failed(msg string) RecordOutcome {
	return RecordOutcome{Status: OutcomeFailed, Message: msg}
}

func ignored(msg string) RecordOutcome {
	return RecordOutcome{Status: OutcomeIgnored, Message: msg}
}

// BatchResponse is the body returned for one ingested batch. Responses is
// aligned with the input array.
type BatchResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message,omitempty"`
	Responses []RecordOutcome `json:"responses,omitempty"`
}

func rejectedBatch() BatchResponse {
	return BatchResponse{Status: batchStatusFailed, Message: MsgNoData}
}
