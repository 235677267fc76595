package dashboard

import (
	"encoding/json"

	"golang.org/x/net/websocket"

	"github.com/wigowatch/wigowatch/internal/types"
	"github.com/wigowatch/wigowatch/internal/watch"
)

// handleWS registers a client, sends it the current overview and keeps the
// connection until the client goes away.
func (d *Dashboard) handleWS(ws *websocket.Conn) {
	d.clientsMu.Lock()
	d.clients[ws] = true
	d.clientsMu.Unlock()
	d.metrics.WebsocketClients.Add(1)
	d.logger.Debug("websocket client connected", "remote", ws.Request().RemoteAddr)

	defer func() {
		d.clientsMu.Lock()
		delete(d.clients, ws)
		d.clientsMu.Unlock()
		d.metrics.WebsocketClients.Add(-1)
		ws.Close()
	}()

	if o, at, ok := d.overview.Snapshot(); ok {
		data, err := json.Marshal(newOverviewPayload(o, at, d.overview.LastError()))
		if err == nil {
			if err := websocket.Message.Send(ws, string(data)); err != nil {
				return
			}
		}
	}

	// Incoming messages are ignored; a read error means the client is gone.
	var msg string
	for {
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			return
		}
	}
}

func (d *Dashboard) broadcastLoop(updates <-chan watch.Update[*types.Overview]) {
	for u := range updates {
		p := newOverviewPayload(u.Data, u.At, u.Err)
		p.Seq = u.Seq
		d.broadcast(p)
	}
}

func (d *Dashboard) broadcast(p overviewPayload) {
	data, err := json.Marshal(p)
	if err != nil {
		d.logger.Error("marshal websocket payload", "error", err)
		return
	}

	d.clientsMu.Lock()
	defer d.clientsMu.Unlock()
	for c := range d.clients {
		if err := websocket.Message.Send(c, string(data)); err != nil {
			c.Close()
			delete(d.clients, c)
		}
	}
}
