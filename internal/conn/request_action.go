package conn

type RequestAction string

const (
	// table actions
	RequestActionFetchSheet      RequestAction = "fetchSheet"
	RequestActionUpdateSheet     RequestAction = "updateSheet"
	RequestActionAddRow          RequestAction = "addRow"
	RequestActionEditRow         RequestAction = "editRow"
	RequestActionDeleteRow       RequestAction = "deleteRow"
	RequestActionAddColumn       RequestAction = "addColumn"
	RequestActionRenameColumn    RequestAction = "renameColumn"
	RequestActionTransformColumn RequestAction = "transformColumn"
	RequestActionCleanData       RequestAction = "cleanData"

	// spreadsheet actions
	RequestActionCreateSheet RequestAction = "createSheet"
	RequestActionListSheets  RequestAction = "listSheets"
	RequestActionDropSheet   RequestAction = "dropSheet"

	// user actions
	RequestActionCreateUser RequestAction = "createUser"
)

// cleanData counts as read-only: it works on the payload, never the store.
func (action RequestAction) IsReadOnly() bool {
	return action == RequestActionFetchSheet || action == RequestActionListSheets ||
		action == RequestActionCleanData
}

func (action RequestAction) IsAdminAction() bool {
	switch action {
	default:
		return false
	case RequestActionCreateSheet, RequestActionDropSheet, RequestActionCreateUser:
		return true
	}
}
