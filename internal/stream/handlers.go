package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub) {
	r.Get("/ws/:sessionID", websocket.New(func(c *websocket.Conn) {
		sub := hub.Subscribe(c.Params("sessionID"))

		done := make(chan struct{})
		go func() {
			defer close(done)
			for payload := range sub.Feed {
				if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		// Closing the feed lets the writer drain and exit.
		hub.Drop(sub)
		<-done
	}))
}
