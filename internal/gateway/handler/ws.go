package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"accsetup/internal/advisor"
	"accsetup/internal/gateway/service/workspace"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Type     string `json:"type"`
	Car      string `json:"car,omitempty"`
	Track    string `json:"track,omitempty"`
	Style    string `json:"style,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

type wsOutbound struct {
	Type      string          `json:"type"`
	Workspace string          `json:"workspace,omitempty"`
	Op        string          `json:"op,omitempty"`
	View      *workspace.View `json:"view,omitempty"`
	Code      string          `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// Live serves the websocket channel. The workspace comes from ?workspace=
// or the cookie; a new one is created on the first generate otherwise.
func (h *Handler) Live(c *gin.Context) {
	wsID := strings.TrimSpace(c.Query("workspace"))
	if wsID == "" {
		wsID = h.workspaceID(c)
	}
	lang := h.lang(c)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("live ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan wsOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	if view, err := h.svc.Get(wsID); err == nil {
		pushWS(writeCh, wsOutbound{Type: "setup", Workspace: view.ID, View: &view})
	} else {
		pushWS(writeCh, wsOutbound{Type: "ready", Workspace: wsID})
	}

	// Actions run off the read loop so pongs keep being read during a long
	// provider call. The service rejects overlapping actions with ErrBusy.
	var idMu sync.Mutex
	current := func() string {
		idMu.Lock()
		defer idMu.Unlock()
		return wsID
	}
	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch op := strings.ToLower(strings.TrimSpace(in.Type)); op {
		case "ping":
			pushWS(writeCh, wsOutbound{Type: "pong"})
		case advisor.OpGenerate, advisor.OpRefine:
			id := current()
			pushWS(writeCh, wsOutbound{Type: "loading", Workspace: id, Op: op})
			go func() {
				var (
					view workspace.View
					err  error
				)
				if op == advisor.OpGenerate {
					view, err = h.svc.Generate(ctx, id, advisor.Selection{Car: in.Car, Track: in.Track, Style: in.Style})
					if view.ID != "" {
						idMu.Lock()
						wsID = view.ID
						idMu.Unlock()
					}
				} else {
					view, err = h.svc.Refine(ctx, id, in.Feedback)
				}
				if err != nil {
					status, body := describe(err, lang)
					if status >= http.StatusInternalServerError {
						log.Printf("live %s failed: %v", op, err)
					}
					pushWS(writeCh, wsOutbound{Type: "error", Workspace: view.ID, Op: op, Code: body.Code, Message: body.Message})
					return
				}
				pushWS(writeCh, wsOutbound{Type: "setup", Workspace: view.ID, Op: op, View: &view})
			}()
		case "":
			pushWS(writeCh, wsOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		default:
			pushWS(writeCh, wsOutbound{Type: "error", Code: "invalid_argument", Message: "unknown type " + op})
		}
	}
}

func pushWS(ch chan<- wsOutbound, msg wsOutbound) {
	select {
	case ch <- msg:
	default:
		log.Printf("live ws queue full, dropping %s", msg.Type)
	}
}
