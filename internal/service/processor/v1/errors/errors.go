// Package errors provides custom service error types.

package errors

type (
	ServiceFoundNilArgument struct {
		Msg string
	}
	ServiceInvalidCredentials struct {
		Msg string
	}
	ServiceForbidden struct {
		Msg string
	}
	ServiceIllegalLink struct {
		Msg string
	}
	ServiceQuantityOutOfRange struct {
		Msg string
	}
	ServiceInvalidServiceSpec struct {
		Msg string
	}
	ServiceInvalidAmount struct {
		Msg string
	}
	ServiceInvalidAction struct {
		Msg string
	}
	ServiceInvalidStatus struct {
		Msg string
	}
)

func (e *ServiceFoundNilArgument) Error() string {
	return e.Msg
}

func (e *ServiceInvalidCredentials) Error() string {
	return e.Msg
}

func (e *ServiceForbidden) Error() string {
	return e.Msg
}

func (e *ServiceIllegalLink) Error() string {
	return e.Msg
}

func (e *ServiceQuantityOutOfRange) Error() string {
	return e.Msg
}

func (e *ServiceInvalidServiceSpec) Error() string {
	return e.Msg
}

func (e *ServiceInvalidAmount) Error() string {
	return e.Msg
}

func (e *ServiceInvalidAction) Error() string {
	return e.Msg
}

func (e *ServiceInvalidStatus) Error() string {
	return e.Msg
}
