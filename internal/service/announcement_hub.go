package service

import (
	"encoding/json"
	"net/http"
	"rural_lms_backend/internal/model"
	"rural_lms_backend/pkg/logger"
	"rural_lms_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域已由 CORS 中间件和 JWT 把关
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StreamMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Subscriber 是一个在线的公告订阅连接
type Subscriber struct {
	Hub     *AnnouncementHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  string
	Role    model.UserRole
	ClassID string
}

// AnnouncementHub 把新发布的公告推送给可见的在线用户
type AnnouncementHub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	Clock       Clock
}

func NewAnnouncementHub() *AnnouncementHub {
	return &AnnouncementHub{subscribers: make(map[*Subscriber]struct{})}
}

func (h *AnnouncementHub) Register(s *Subscriber) {
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	monitoring.AnnouncementSubscribers.Inc()
}

func (h *AnnouncementHub) Unregister(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.Send)
		monitoring.AnnouncementSubscribers.Dec()
	}
	h.mu.Unlock()
}

func (h *AnnouncementHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish 按角色和班级过滤后投递，发送队列已满的连接直接丢弃这条消息
func (h *AnnouncementHub) Publish(announcement *model.Announcement) int {
	payload, err := json.Marshal(StreamMessage{Type: "ANNOUNCEMENT", Data: toAnnouncementView(announcement)})
	if err != nil {
		logger.Log.Error("Failed to encode announcement", zap.Error(err))
		return 0
	}

	now := h.Clock.now()
	delivered := 0
	h.mu.RLock()
	for s := range h.subscribers {
		if !announcement.VisibleTo(s.Role, s.ClassID, now) {
			continue
		}
		select {
		case s.Send <- payload:
			delivered++
		default:
			logger.Log.Warn("Announcement dropped for slow subscriber", zap.String("userId", s.UserID))
		}
	}
	h.mu.RUnlock()
	return delivered
}

// Close 关闭全部连接，停机时调用
func (h *AnnouncementHub) Close() {
	h.mu.Lock()
	for s := range h.subscribers {
		close(s.Send)
		delete(h.subscribers, s)
	}
	h.mu.Unlock()
	monitoring.AnnouncementSubscribers.Set(0)
}

// readPump 只处理控制帧，客户端不会上行业务消息
func (s *Subscriber) readPump() {
	defer func() {
		s.Hub.Unregister(s)
		s.Conn.Close()
	}()
	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error { s.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("Announcement stream unexpected close", zap.Error(err), zap.String("userId", s.UserID))
			}
			return
		}
	}
}

func (s *Subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeStream 升级连接并登记订阅者
func ServeStream(hub *AnnouncementHub, w http.ResponseWriter, r *http.Request, user *model.User) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.String("userId", user.ID))
		return
	}
	s := &Subscriber{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		UserID: user.ID,
		Role:   user.Role,
	}
	if user.ClassID != nil {
		s.ClassID = *user.ClassID
	}
	hub.Register(s)

	go s.writePump()
	go s.readPump()
}
