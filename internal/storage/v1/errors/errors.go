// Package errors provides custom storage error types.

package errors

import (
	"fmt"
)

type (
	StatementPSQLError struct {
		Err error
	}
	ExecutionPSQLError struct {
		Err error
	}
	ScanningPSQLError struct {
		Err error
	}
	TransactionPSQLError struct {
		Err error
	}
	AlreadyExistsError struct {
		Err error
		ID  string
	}
	NotFoundError struct {
		Err error
	}
	NotEnoughFundsError struct {
		ID string
	}
	AlreadyProcessedError struct {
		ID string
	}
	ContextTimeoutExceededError struct {
		Err error
	}
)

func (e *StatementPSQLError) Error() string {
	return fmt.Sprintf("%s: could not compile", e.Err.Error())
}

func (e *ExecutionPSQLError) Error() string {
	return fmt.Sprintf("%s: could not execute", e.Err.Error())
}

func (e *ScanningPSQLError) Error() string {
	return fmt.Sprintf("%s: could not scan", e.Err.Error())
}

func (e *TransactionPSQLError) Error() string {
	return fmt.Sprintf("%s: could not commit", e.Err.Error())
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s: already exists", e.ID)
}

func (e *NotFoundError) Error() string {
	return "entry was not found"
}

func (e *NotEnoughFundsError) Error() string {
	return fmt.Sprintf("%s: not enough funds on balance", e.ID)
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s: already processed", e.ID)
}

func (e *ContextTimeoutExceededError) Error() string {
	return fmt.Sprintf("%s: context timeout exceeded", e.Err.Error())
}
