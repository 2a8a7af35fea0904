package sync

import (
	"errors"
	"fmt"

	"github.com/marcus/mask/internal/arcgis"
	"github.com/marcus/mask/internal/models"
)

// FailureKind classifies a failed store operation.
type FailureKind int

const (
	// RemoteRejected means the store answered but did not confirm the edit.
	RemoteRejected FailureKind = iota + 1
	// TransportFailure means the call did not complete.
	TransportFailure
	// CountRefreshFailure means the feature count could not be refreshed.
	CountRefreshFailure
)

func (k FailureKind) String() string {
	switch k {
	case RemoteRejected:
		return "remote rejected"
	case TransportFailure:
		return "transport failure"
	case CountRefreshFailure:
		return "count refresh failure"
	}
	return "unknown failure"
}

// Sentinels matched by errors.Is against a *Failure.
var (
	ErrRemoteRejected = errors.New("remote rejected")
	ErrTransport      = errors.New("transport failure")
	ErrCountRefresh   = errors.New("count refresh failure")
)

// Operation names a store operation.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpCount  Operation = "count"
	OpLoad   Operation = "load"
)

// Failure is the typed result of a failed store operation.
type Failure struct {
	Kind     FailureKind
	Op       Operation
	ObjectID models.ObjectID
	// Detail is the store's own explanation, when it gave one.
	Detail string
	Err    error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Op, f.Kind)
	if f.ObjectID.Valid() {
		msg = fmt.Sprintf("%s %d: %s", f.Op, f.ObjectID, f.Kind)
	}
	if f.Detail != "" {
		msg += ": " + f.Detail
	} else if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() []error {
	var sentinel error
	switch f.Kind {
	case RemoteRejected:
		sentinel = ErrRemoteRejected
	case TransportFailure:
		sentinel = ErrTransport
	case CountRefreshFailure:
		sentinel = ErrCountRefresh
	}
	var errs []error
	if sentinel != nil {
		errs = append(errs, sentinel)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// UserMessage is the text shown to the operator.
func (f *Failure) UserMessage() string {
	var msg string
	switch f.Op {
	case OpCreate:
		msg = "Could not save masking area. Check connection permissions."
	case OpUpdate:
		msg = "Could not update masking area. Check connection permissions."
	case OpDelete:
		msg = "Could not delete masking area. Check connection permissions."
	case OpCount:
		msg = "Could not refresh the masking area count."
	case OpLoad:
		msg = "Could not load masking areas."
	default:
		msg = "Masking area operation failed."
	}
	if f.Detail != "" {
		msg += " (" + f.Detail + ")"
	} else if f.Kind == TransportFailure {
		msg += " (connection failed)"
	}
	return msg
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// classify turns a store call error into a Failure.
func classify(op Operation, id models.ObjectID, err error) *Failure {
	f := &Failure{Kind: TransportFailure, Op: op, ObjectID: id, Err: err}
	if arcgis.IsRejection(err) {
		f.Kind = RemoteRejected
		f.Detail = faultDetail(err)
	}
	return f
}

// unconfirmed builds the failure for an edit the store did not confirm.
func unconfirmed(op Operation, id models.ObjectID, results []arcgis.EditResult) *Failure {
	f := &Failure{Kind: RemoteRejected, Op: op, ObjectID: id}
	switch {
	case len(results) == 0:
		f.Err = errors.New("store returned no edit result")
	case results[0].Error != nil:
		f.Err = results[0].Error
		f.Detail = faultDetail(results[0].Error)
	default:
		f.Err = errors.New("store did not confirm an object id")
	}
	return f
}

func faultDetail(err error) string {
	var fault *arcgis.Fault
	if errors.As(err, &fault) {
		return fault.Error()
	}
	return ""
}
