package conn

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tablecraft/tablecraft/internal/auth"
	"github.com/tablecraft/tablecraft/internal/query"
	"github.com/tablecraft/tablecraft/internal/sheets"
	"github.com/tablecraft/tablecraft/internal/table"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__tcraft_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

func errorResponse(err error) Response {
	if query_error, ok := err.(*query.QueryError); ok {
		return NewErrorResponse(query_error.Status(), query_error.Error())
	}
	if decode_error, ok := err.(*table.DecodeError); ok {
		return NewErrorResponse(http.StatusBadRequest, decode_error.Error())
	}
	switch {
	case errors.Is(err, sheets.ErrSheetNotFound), errors.Is(err, sheets.ErrTabNotFound):
		return NewErrorResponse(http.StatusNotFound, err.Error())
	case errors.Is(err, sheets.ErrSheetExists):
		return NewErrorResponse(http.StatusConflict, err.Error())
	}
	return NewErrorResponse(http.StatusBadRequest, err.Error())
}

type FetchSheetRequest struct {
	Sheet string `json:"sheet"`
	Tab   string `json:"tab"`
}

func FetchSheetReqHandler(store *sheets.Store, raw []byte) Response {
	var req FetchSheetRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(t)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Fetched %d rows from %s", len(t.Rows), req.Tab),
		data,
	)
}

type UpdateSheetRequest struct {
	Sheet string `json:"sheet"`
	Tab   string `json:"tab"`
	Data  string `json:"data"`
}

func UpdateSheetReqHandler(store *sheets.Store, raw []byte) Response {
	var req UpdateSheetRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := table.Decode(req.Data)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, t); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(t)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Updated %s with %d rows", req.Tab, len(t.Rows)),
		data,
	)
}

type AddRowRequest struct {
	Sheet string                 `json:"sheet"`
	Tab   string                 `json:"tab"`
	Row   map[string]table.Value `json:"row"`
}

func AddRowReqHandler(store *sheets.Store, raw []byte) Response {
	var req AddRowRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	res, err := query.AddRow(t, req.Row)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, res); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusCreated,
		fmt.Sprintf("Added row to %s", req.Tab),
		data,
	)
}

type EditRowRequest struct {
	Sheet      string                 `json:"sheet"`
	Tab        string                 `json:"tab"`
	Identifier map[string]table.Value `json:"identifier"`
	Updates    map[string]table.Value `json:"updates"`
}

func EditRowReqHandler(store *sheets.Store, raw []byte) Response {
	var req EditRowRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	res, count, err := query.EditRow(t, req.Identifier, req.Updates)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, res); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Updated %d rows in %s", count, req.Tab),
		data,
	)
}

type DeleteRowRequest struct {
	Sheet      string                 `json:"sheet"`
	Tab        string                 `json:"tab"`
	Identifier map[string]table.Value `json:"identifier"`
}

func DeleteRowReqHandler(store *sheets.Store, raw []byte) Response {
	var req DeleteRowRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	res, count, err := query.DeleteRow(t, req.Identifier)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, res); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Deleted %d rows in %s", count, req.Tab),
		data,
	)
}

type AddColumnRequest struct {
	Sheet      string              `json:"sheet"`
	Tab        string              `json:"tab"`
	Name       string              `json:"name"`
	Formula    query.Formula       `json:"formula"`
	References []string            `json:"reference_columns"`
	Params     *query.ColumnParams `json:"params"`
}

func AddColumnReqHandler(store *sheets.Store, raw []byte) Response {
	var req AddColumnRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	res, err := query.AddColumn(t, req.Name, req.Formula, req.References, req.Params)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, res); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Added column %s to %s", req.Name, req.Tab),
		data,
	)
}

type RenameColumnRequest struct {
	Sheet string `json:"sheet"`
	Tab   string `json:"tab"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func RenameColumnReqHandler(store *sheets.Store, raw []byte) Response {
	var req RenameColumnRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	res, err := query.RenameColumn(t, req.From, req.To)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, res); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Renamed column %s to %s", req.From, req.To),
		data,
	)
}

type TransformColumnRequest struct {
	Sheet          string                 `json:"sheet"`
	Tab            string                 `json:"tab"`
	Column         string                 `json:"column"`
	Transformation query.Transformation   `json:"transformation"`
	Params         *query.TransformParams `json:"params"`
}

func TransformColumnReqHandler(store *sheets.Store, raw []byte) Response {
	var req TransformColumnRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	t, err := store.Fetch(req.Sheet, req.Tab)
	if err != nil {
		return errorResponse(err)
	}

	res, err := query.TransformColumn(t, req.Column, req.Transformation, req.Params)
	if err != nil {
		return errorResponse(err)
	}

	if err := store.Write(req.Sheet, req.Tab, res); err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Applied %s to column %s", req.Transformation, req.Column),
		data,
	)
}

type CleanDataRequest struct {
	Data   string            `json:"data"`
	Method query.CleanMethod `json:"method"`
}

// CleanDataReqHandler cleans the payload table and hands it back, it
// never touches stored spreadsheets.
func CleanDataReqHandler(raw []byte) Response {
	var req CleanDataRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	if req.Method == "" {
		req.Method = query.CleanMean
	}

	t, err := table.Decode(req.Data)
	if err != nil {
		return errorResponse(err)
	}

	res, err := query.Clean(t, req.Method)
	if err != nil {
		return errorResponse(err)
	}

	data, err := table.Encode(res)
	if err != nil {
		return errorResponse(err)
	}
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Cleaned %d rows with method %s", len(res.Rows), req.Method),
		data,
	)
}

type CreateSheetRequest struct {
	Name string   `json:"name"`
	Tabs []string `json:"tabs"`
}

func CreateSheetReqHandler(store *sheets.Store, raw []byte) Response {
	var req CreateSheetRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	sheet, err := store.CreateSheet(req.Name, req.Tabs)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(
		http.StatusCreated,
		fmt.Sprintf("Created new spreadsheet %s", sheet.Name),
		sheet.Id,
	)
}

func ListSheetsReqHandler(store *sheets.Store) Response {
	names := store.ListSheets()
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Found %d spreadsheets", len(names)),
		names,
	)
}

type DropSheetRequest struct {
	Name string `json:"name"`
}

func DropSheetReqHandler(store *sheets.Store, raw []byte) Response {
	var req DropSheetRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	if err := store.DropSheet(req.Name); err != nil {
		return errorResponse(err)
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Dropped spreadsheet %s", req.Name), nil)
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     int    `json:"role"`
}

func CreateUserReqHandler(store *sheets.Store, raw []byte) Response {
	var req CreateUserRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	user := auth.NewUser(req.Name, req.Password, auth.Role(req.Role))
	store.Users.Set(user.Id, user)
	store.WriteToFile()
	return NewResponse(http.StatusCreated, fmt.Sprintf("Created new user %s", user.Id), nil)
}

func ActionHandler(store *sheets.Store, action RequestAction, ctx *ConnCtx, raw []byte) Response {
	clearance := auth.RoleReadWrite
	if action.IsReadOnly() {
		clearance = auth.RoleReadOnly
	} else if action.IsAdminAction() {
		clearance = auth.RoleAdmin
	}
	if ctx.User == nil || !ctx.User.HasClearance(clearance) {
		return NewErrorResponse(http.StatusForbidden, auth.InsufficientPermissions.Error())
	}

	switch action {
	case RequestActionFetchSheet:
		return FetchSheetReqHandler(store, raw)
	case RequestActionUpdateSheet:
		return UpdateSheetReqHandler(store, raw)
	case RequestActionAddRow:
		return AddRowReqHandler(store, raw)
	case RequestActionEditRow:
		return EditRowReqHandler(store, raw)
	case RequestActionDeleteRow:
		return DeleteRowReqHandler(store, raw)
	case RequestActionAddColumn:
		return AddColumnReqHandler(store, raw)
	case RequestActionRenameColumn:
		return RenameColumnReqHandler(store, raw)
	case RequestActionTransformColumn:
		return TransformColumnReqHandler(store, raw)
	case RequestActionCleanData:
		return CleanDataReqHandler(raw)
	case RequestActionCreateSheet:
		return CreateSheetReqHandler(store, raw)
	case RequestActionListSheets:
		return ListSheetsReqHandler(store)
	case RequestActionDropSheet:
		return DropSheetReqHandler(store, raw)
	case RequestActionCreateUser:
		return CreateUserReqHandler(store, raw)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}
