package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	appcatalog "github.com/storeadmin/backend/internal/application/catalog"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
	"github.com/storeadmin/backend/internal/application/live"
	apptrade "github.com/storeadmin/backend/internal/application/trade"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Live list message types
const (
	LiveMsgSubscribe     = "subscribe"
	LiveMsgSearch        = "search"
	LiveMsgSearchVisible = "search_visible"
	LiveMsgRows          = "rows"
	LiveMsgError         = "error"
)

const (
	liveWriteWait      = 10 * time.Second
	livePongWait       = 60 * time.Second
	livePingPeriod     = livePongWait * 9 / 10
	liveMaxMessageSize = 4096
)

// LiveClientMessage is sent by the dashboard to drive its list page
type LiveClientMessage struct {
	Type    string            `json:"type"`
	List    string            `json:"list,omitempty"`
	Filter  map[string]string `json:"filter,omitempty"`
	Text    string            `json:"text,omitempty"`
	Visible bool              `json:"visible,omitempty"`
}

// LiveServerMessage carries the rows of the active row set. View counts
// subscribe requests so a client can drop states of a replaced list.
type LiveServerMessage struct {
	Type          string `json:"type"`
	View          int    `json:"view"`
	List          string `json:"list,omitempty"`
	Active        string `json:"active,omitempty"`
	Rows          any    `json:"rows,omitempty"`
	SearchVisible bool   `json:"search_visible"`
	SearchText    string `json:"search_text"`
	Error         string `json:"error,omitempty"`
}

// LiveSources are the list pages that can be watched
type LiveSources struct {
	Categories live.Source[appcatalog.CategoryResponse]
	Brands     live.Source[appcatalog.BrandResponse]
	Products   live.Source[appcatalog.ProductResponse]
	Orders     live.Source[apptrade.OrderResponse]
	Users      live.Source[appidentity.UserResponse]
}

// liveList is the type-erased part of a live.ListView
type liveList interface {
	SetSearchText(text string)
	SetSearchVisible(visible bool)
	Close()
}

type openListFunc func(ctx context.Context, view int, filter live.Filter, out chan<- LiveServerMessage) liveList

// LiveHandler serves list pages over a WebSocket. Each connection watches
// one list at a time; a new subscribe message replaces it.
type LiveHandler struct {
	BaseHandler
	lists    map[string]openListFunc
	upgrader websocket.Upgrader
	opts     []live.ListViewOption
}

// NewLiveHandler creates a new LiveHandler. Browser origins outside
// allowedOrigins are refused; "*" allows any.
func NewLiveHandler(sources LiveSources, allowedOrigins []string, opts ...live.ListViewOption) *LiveHandler {
	h := &LiveHandler{opts: opts}
	h.lists = map[string]openListFunc{
		"categories": listOpener(h, "categories", sources.Categories),
		"brands":     listOpener(h, "brands", sources.Brands),
		"products":   listOpener(h, "products", sources.Products),
		"orders":     listOpener(h, "orders", sources.Orders),
		"users":      listOpener(h, "users", sources.Users),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func listOpener[T any](h *LiveHandler, name string, src live.Source[T]) openListFunc {
	return func(ctx context.Context, view int, filter live.Filter, out chan<- LiveServerMessage) liveList {
		v := live.NewListView(ctx, src, filter, h.opts...)
		go func() {
			for state := range v.Updates() {
				msg := LiveServerMessage{
					Type:          LiveMsgRows,
					View:          view,
					List:          name,
					Active:        state.Active,
					Rows:          state.Rows,
					SearchVisible: state.SearchVisible,
					SearchText:    state.SearchText,
				}
				if state.Err != nil {
					msg.Error = "Error Occurred.."
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()
		return v
	}
}

// Serve godoc
// @Summary      Live list pages
// @Description  WebSocket. Send {"type":"subscribe","list":"orders","filter":{"status":"Pending"}}, {"type":"search","text":"..."} or {"type":"search_visible","visible":true}; receive "rows" and "error" messages.
// @Tags         live
// @Success      101
// @Router       /live/ws [get]
func (h *LiveHandler) Serve(c *gin.Context) {
	log := logger.GetGinLogger(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the request
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := make(chan LiveServerMessage, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		h.writeLoop(ctx, conn, out)
	}()

	s := &liveSession{handler: h, ctx: ctx, out: out}
	h.readLoop(ctx, conn, s, log)

	cancel()
	s.close()
	wg.Wait()
}

func (h *LiveHandler) readLoop(ctx context.Context, conn *websocket.Conn, s *liveSession, log *zap.Logger) {
	conn.SetReadLimit(liveMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for ctx.Err() == nil {
		var msg LiveClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("WebSocket closed", zap.Error(err))
			}
			return
		}
		if errMsg := s.handle(msg); errMsg != "" {
			select {
			case s.out <- LiveServerMessage{Type: LiveMsgError, View: s.view, Error: errMsg}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *LiveHandler) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan LiveServerMessage) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(liveWriteWait))
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}

// liveSession is the list state of one connection. It is only touched by
// the read loop.
type liveSession struct {
	handler *LiveHandler
	ctx     context.Context
	out     chan LiveServerMessage
	view    int
	current liveList
}

// handle applies a client message and returns an error text for the client
func (s *liveSession) handle(msg LiveClientMessage) string {
	switch msg.Type {
	case LiveMsgSubscribe:
		open, ok := s.handler.lists[msg.List]
		if !ok {
			return "unknown list " + msg.List
		}
		s.close()
		s.view++
		s.current = open(s.ctx, s.view, live.Filter(msg.Filter), s.out)
	case LiveMsgSearch:
		if s.current == nil {
			return "subscribe to a list first"
		}
		s.current.SetSearchText(msg.Text)
	case LiveMsgSearchVisible:
		if s.current == nil {
			return "subscribe to a list first"
		}
		s.current.SetSearchVisible(msg.Visible)
	default:
		return "unknown message type " + msg.Type
	}
	return ""
}

func (s *liveSession) close() {
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
}
