package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/tablecraft/tablecraft/internal/auth"
	"github.com/tablecraft/tablecraft/internal/sheets"
	"github.com/tablecraft/tablecraft/pkg"
)

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__tcraft_client_req_id__"` // used in tcraft clients
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const maxConnAttempts = 3

type ConnCtx struct {
	conn     *websocket.Conn
	User     *auth.User
	attempts int
}

func (ctx *ConnCtx) WriteResponse(res Response) error {
	return ctx.conn.WriteJSON(res)
}

func (ctx *ConnCtx) WriteString(message string) error {
	return ctx.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

type ConnRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func ConnValidate(store *sheets.Store, r ConnRequest) *auth.User {
	if r.Username == "" {
		return nil
	}
	for _, u := range store.Users {
		if u.Name == r.Username && u.ValidatePassword(r.Password) {
			return u
		}
	}
	return nil
}

func tryConnect(store *sheets.Store, ctx *ConnCtx, buf []byte) error {
	var r ConnRequest
	if err := json.Unmarshal(buf, &r); err != nil {
		ctx.WriteResponse(NewErrorResponse(http.StatusBadRequest, err.Error()))
		return err
	}

	ctx.User = ConnValidate(store, r)
	if ctx.User == nil {
		ctx.WriteResponse(NewErrorResponse(http.StatusUnauthorized, "Invalid auth"))
		return nil
	}

	ctx.WriteString("connected")
	return nil
}

func HandleConnection(store *sheets.Store, w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog("ws upgrade error", err)
		return
	}

	ctx := &ConnCtx{conn: conn}
	defer conn.Close()
	defer pkg.InfoLog("Connection closed from", conn.RemoteAddr())
	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("conn read error", err)
			}
			return
		}

		if ctx.User == nil {
			if ctx.attempts == maxConnAttempts {
				pkg.ErrorLog("max connection attempts reached")
				return
			}

			err = tryConnect(store, ctx, buf)
			ctx.attempts += 1
			if err != nil {
				pkg.ErrorLog("conn attempt error", err)
				return
			}
			continue
		}

		var req WsRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			pkg.ErrorLog("parsing request", err)
			continue
		}

		res := ActionHandler(store, req.Action, ctx, buf)
		res.ReqId = req.ReqId

		if err := ctx.WriteResponse(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}

		if !req.Action.IsReadOnly() {
			pkg.LockWrap(store, store.ResetWriteTimer)
		}
	}
}

func Listen(store *sheets.Store, port int) {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  0,
		WriteTimeout: 0,
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		HandleConnection(store, w, r)
	})

	go func() {
		err := s.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	go store.WatchWrites()

	pkg.InfoLog("tablecraft listening on port", port)
	<-exit
	pkg.DebugLog("Shutting down...")
	s.Shutdown(context.Background())
	store.WriteToFile()
}
