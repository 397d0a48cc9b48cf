package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sales-dashboard-api/internal/coordinator"
	"sales-dashboard-api/internal/models"
	"sales-dashboard-api/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamUpdate is one frame pushed to the client: either "loading" while a
// dispatch is in flight, or the result of the newest dispatch.
type streamUpdate struct {
	Loading bool                `json:"loading"`
	Result  *models.QueryResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// salesStreamHandler runs one request coordinator per connection. The client
// sends a full QueryRequest on every interaction; search-text-only changes
// are debounced, everything else dispatches immediately, and only the newest
// dispatch's outcome is ever written back.
func salesStreamHandler(svc *services.SalesService, debounce time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		coord := coordinator.New(svc.GetSales, debounce, logger)
		defer coord.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for st := range coord.Updates() {
				frame := streamUpdate{
					Loading: st.Loading,
					Result:  st.Result,
				}
				if st.Err != nil {
					frame.Error = st.Err.Error()
				}
				if err := conn.WriteJSON(frame); err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}()

		for {
			var req models.QueryRequest
			if err := conn.ReadJSON(&req); err != nil {
				logger.Debug("websocket closed", zap.Error(err))
				break
			}
			coord.Submit(req)
		}

		coord.Close()
		<-done
	}
}
