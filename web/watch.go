package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nelhage/fourline/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Snapshots a watcher may fall behind before it is dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans game snapshots out to websocket watchers. It implements
// game.Recorder, so sessions push every transition through it; sends
// never block, and a watcher that cannot keep up is disconnected.
type Hub struct {
	mu      sync.Mutex
	watched map[string]map[*watcher]bool
	debug   int
}

type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(debug int) *Hub {
	return &Hub{
		watched: make(map[string]map[*watcher]bool),
		debug:   debug,
	}
}

// Serve upgrades the request and streams snapshots of the given game
// until the client goes away. The current snapshot is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, id string, snap game.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade %s: %v", id, err)
		return
	}
	msg, err := json.Marshal(&snap)
	if err != nil {
		log.Printf("[ws] marshal %s: %v", id, err)
		conn.Close()
		return
	}
	wc := &watcher{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	wc.send <- msg

	h.mu.Lock()
	set := h.watched[id]
	if set == nil {
		set = make(map[*watcher]bool)
		h.watched[id] = set
	}
	set[wc] = true
	h.mu.Unlock()
	if h.debug > 0 {
		log.Printf("[ws] watch %s: %s connected", id, conn.RemoteAddr())
	}

	go wc.writePump()
	wc.readPump(h, id)
}

// RecordMove broadcasts the post-move snapshot to the game's watchers.
// It runs inside the session's critical section and must not block, so
// slow watchers are dropped rather than waited on.
func (h *Hub) RecordMove(snap game.Snapshot, mv game.Move) {
	h.Broadcast(snap)
}

func (h *Hub) Broadcast(snap game.Snapshot) {
	msg, err := json.Marshal(&snap)
	if err != nil {
		log.Printf("[ws] marshal %s: %v", snap.GameID, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for wc := range h.watched[snap.GameID] {
		select {
		case wc.send <- msg:
		default:
			if h.debug > 0 {
				log.Printf("[ws] watch %s: dropping slow watcher %s", snap.GameID, wc.conn.RemoteAddr())
			}
			h.removeLocked(snap.GameID, wc)
		}
	}
}

// CloseGame disconnects every watcher of the given game.
func (h *Hub) CloseGame(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for wc := range h.watched[id] {
		h.removeLocked(id, wc)
	}
}

// Watchers reports how many clients are following the given game.
func (h *Hub) Watchers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watched[id])
}

func (h *Hub) unregister(id string, wc *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watched[id][wc] {
		h.removeLocked(id, wc)
	}
}

// removeLocked closes the watcher's send channel, which makes its
// writePump send a close frame and exit. Callers hold h.mu; the map
// check above keeps the channel from being closed twice.
func (h *Hub) removeLocked(id string, wc *watcher) {
	delete(h.watched[id], wc)
	if len(h.watched[id]) == 0 {
		delete(h.watched, id)
	}
	close(wc.send)
}

func (wc *watcher) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wc.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-wc.send:
			wc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wc.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wc.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			wc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; watchers are read-only. It keeps
// the connection's pong deadline fresh and unregisters on any error.
func (wc *watcher) readPump(h *Hub, id string) {
	defer func() {
		h.unregister(id, wc)
		wc.conn.Close()
	}()
	wc.conn.SetReadLimit(512)
	wc.conn.SetReadDeadline(time.Now().Add(pongWait))
	wc.conn.SetPongHandler(func(string) error {
		wc.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := wc.conn.ReadMessage(); err != nil {
			return
		}
	}
}
