package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSController struct {
	hub      *BlockHub
	upgrader websocket.Upgrader
}

func NewWSController(hub *BlockHub) *WSController {
	return &WSController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The façade serves same-origin operator tooling only; no
			// browser cross-origin access is in scope.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Blocks handles GET /ws/blocks: a live tail of newly-applied block
// descriptors, one JSON message per block (SPEC_FULL.md §7).
func (c *WSController) Blocks(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("ws/blocks: upgrade failed")
		return
	}
	defer conn.Close()

	deltas, cancel := c.hub.Subscribe()
	defer cancel()

	go drainReads(conn)

	for delta := range deltas {
		if err := conn.WriteJSON(struct {
			BlockNum uint64 `json:"blockNum"`
			BlockID  string `json:"blockId"`
			Changes  int    `json:"changes"`
		}{BlockNum: delta.BlockNum, BlockID: delta.BlockID, Changes: len(delta.Changes)}); err != nil {
			return
		}
	}
}

// drainReads discards client messages, required so the connection notices
// a client-initiated close.
func drainReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
