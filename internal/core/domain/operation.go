package domain

import "fmt"

// OperationKind is the lifecycle operation requested by a queue row.
// The numeric values are the codes stored in the queue.
type OperationKind int

// Supported operations.
const (
	OperationPublish  OperationKind = 1
	OperationEdit     OperationKind = 2
	OperationPause    OperationKind = 3
	OperationActivate OperationKind = 4
	OperationDelete   OperationKind = 5
	// OperationSleep parks a row without touching the marketplace.
	OperationSleep OperationKind = 6
)

// IsValid returns true if the operation code is recognised.
func (k OperationKind) IsValid() bool {
	return k >= OperationPublish && k <= OperationSleep
}

// String returns the operation name.
func (k OperationKind) String() string {
	switch k {
	case OperationPublish:
		return "publish"
	case OperationEdit:
		return "edit"
	case OperationPause:
		return "pause"
	case OperationActivate:
		return "activate"
	case OperationDelete:
		return "delete"
	case OperationSleep:
		return "sleep"
	default:
		return fmt.Sprintf("unsupported(%d)", int(k))
	}
}

// OutcomeCode is the value of the queue's return code column.
type OutcomeCode int

// Queue state codes.
const (
	CodePending   OutcomeCode = 0
	CodeExecuting OutcomeCode = 1
	CodeSuccess   OutcomeCode = 2
	CodeAsleep    OutcomeCode = 3
)

// Failure codes, one per FailureKind.
const (
	CodeValidationFailure   OutcomeCode = 88
	CodeRemoteFailure       OutcomeCode = 89
	CodeBusinessRuleFailure OutcomeCode = 90
	CodeAbortedStep         OutcomeCode = 91
	CodeUnexpectedFailure   OutcomeCode = 99
)

// IsFailure returns true for the failure codes.
func (c OutcomeCode) IsFailure() bool {
	return c >= CodeValidationFailure
}

// String returns a short label for the code.
func (c OutcomeCode) String() string {
	switch c {
	case CodePending:
		return "pending"
	case CodeExecuting:
		return "executing"
	case CodeSuccess:
		return "success"
	case CodeAsleep:
		return "asleep"
	case CodeValidationFailure:
		return "validation_failure"
	case CodeRemoteFailure:
		return "remote_failure"
	case CodeBusinessRuleFailure:
		return "business_rule_failure"
	case CodeAbortedStep:
		return "aborted_step"
	case CodeUnexpectedFailure:
		return "unexpected_failure"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}
