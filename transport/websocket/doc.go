// Package websocket pushes board updates to browser and tool clients.
//
// A central Hub owns the set of connected clients. Each connection gets a
// read pump, which only watches for disconnects and pongs, and a write
// pump, which forwards queued messages and sends pings. Every mutation of
// the board is broadcast to every client as JSON:
//
//	{"event":"placed","board":"⬜🍪⬛⬛⬛⬜\n...","state":{"grid":[...],"outcome":"running"},"version":3}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		view, _ := svc.Board(r.Context())
//		initial, _ := websocket.EncodeBoard(view)
//		hub.ServeWS(w, r, initial)
//	})
//
//	view, err := svc.Place(ctx, engine.Milk, 2)
//	if err == nil {
//		hub.BroadcastBoard(view)
//	}
//
// The hub's client map is only touched from Run. A client that cannot keep
// up with its send buffer is disconnected. An update whose version is lower
// than one already delivered is dropped. Run returns when its context is
// done.
package websocket
