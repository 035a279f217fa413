package protocol

// Method is an outbound call name.
type Method string

// Client to server calls.
const (
	MethodJoin                    Method = "Join"
	MethodLeave                   Method = "Leave"
	MethodJoinChat                Method = "JoinChat"
	MethodFold                    Method = "Fold"
	MethodCheckOrCall             Method = "CheckOrCall"
	MethodBetOrRaise              Method = "BetOrRaise"
	MethodSit                     Method = "Sit"
	MethodStandup                 Method = "Standup"
	MethodShowCards               Method = "ShowCards"
	MethodMuck                    Method = "Muck"
	MethodShowHoleCard            Method = "ShowHoleCard"
	MethodSetTableParameters      Method = "SetTableParameters"
	MethodAddBalance              Method = "AddBalance"
	MethodChangeWaitQueueSettings Method = "ChangeWaitQueueSettings"
)

// Status is the result code of an outbound call. StatusOk is the only success.
type Status string

const (
	StatusOk                               Status = "Ok"
	StatusOperationNotValidAtThisTime      Status = "OperationNotValidAtThisTime"
	StatusOperationNotValidWhenTableFrozen Status = "OperationNotValidWhenTableFrozen"
	StatusNotSufficientFunds               Status = "NotSufficiendFunds"
	StatusSeatAlreadyTaken                 Status = "SeatAlreadyTaken"
	StatusTableNotFound                    Status = "TableNotFound"
	StatusInvalidAmount                    Status = "InvalidAmount"
	StatusNotAuthorized                    Status = "NotAuthorized"
)

// OK reports success.
func (s Status) OK() bool {
	return s == StatusOk
}

func (s Status) String() string {
	return string(s)
}
