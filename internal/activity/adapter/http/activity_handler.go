package http

import (
	"time"

	"lifeops/internal/activity/adapter/realtime"
	"lifeops/internal/activity/usecase"
	authhttp "lifeops/internal/auth/adapter/http"
	"lifeops/internal/shared/httpx"
	"lifeops/internal/shared/logger"
	"lifeops/internal/shared/response"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	userIDLocalsKey = "activity.userID"
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	writeWait       = 10 * time.Second
)

// ListActivityQuery is the query string of GET /users/me/activity
type ListActivityQuery struct {
	Page  int `query:"page" json:"page" validate:"min=1,max=10000"`
	Limit int `query:"limit" json:"limit" validate:"min=1,max=100"`
}

// Normalize fills in the default page and limit
func (q *ListActivityQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = usecase.DefaultLimit
	}
}

// ActivityHTTPHandler serves the activity listing and the event stream
type ActivityHTTPHandler struct {
	usecase usecase.ActivityUsecaseInterface
	hub     *realtime.Hub
	log     logger.Logger
}

// NewActivityHTTPHandler creates a new activity handler
func NewActivityHTTPHandler(uc usecase.ActivityUsecaseInterface, hub *realtime.Hub, log logger.Logger) *ActivityHTTPHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ActivityHTTPHandler{
		usecase: uc,
		hub:     hub,
		log:     log.WithComponent("activity-http"),
	}
}

// RegisterRoutes mounts the activity routes on me, the authenticated /users/me group
func (h *ActivityHTTPHandler) RegisterRoutes(me fiber.Router) {
	me.Get("/activity", httpx.ValidateQuery[ListActivityQuery](), h.ListActivity)
	me.Get("/events", h.upgrade, websocket.New(h.stream))
}

// ListActivity returns the caller's events newest first
func (h *ActivityHTTPHandler) ListActivity(c *fiber.Ctx) error {
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	q := httpx.Query[ListActivityQuery](c)

	page, err := h.usecase.List(c.UserContext(), identity.User.ID, q.Page, q.Limit)
	if err != nil {
		return err
	}
	return response.Paginated(c, page.Events, response.PageRequest{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	}, "Activity retrieved")
}

// upgrade admits only WebSocket handshakes and hands the user id to the connection
func (h *ActivityHTTPHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	identity, err := authhttp.MustIdentity(c)
	if err != nil {
		return err
	}
	c.Locals(userIDLocalsKey, identity.User.ID)
	return c.Next()
}

// stream forwards the user's events until either side goes away
func (h *ActivityHTTPHandler) stream(conn *websocket.Conn) {
	userID, _ := conn.Locals(userIDLocalsKey).(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	client := h.hub.Register(userID)
	defer h.hub.Unregister(client)

	h.log.Infof("event stream opened for user %s (client %s)", userID, client.ID)
	defer h.log.Infof("event stream closed for user %s (client %s)", userID, client.ID)

	// The reader only detects disconnects; clients do not send commands.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warnf("event stream read error for client %s: %v", client.ID, err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-client.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warnf("event stream write error for client %s: %v", client.ID, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
