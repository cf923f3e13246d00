package http

import (
	stdhttp "net/http"
	"slices"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the HTTP server: health, room API, websocket endpoint and
// optional static files.
func NewServer(hub *core.Hub, boards *board.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(logger))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	}

	r.GET("/health", func(c *gin.Context) {
		c.Header("X-Rooms", strconv.Itoa(boards.Len()))
		c.String(stdhttp.StatusOK, "ok")
	})

	rooms := NewRoomHandlers(hub, boards, logger)
	api := r.Group("/api")
	{
		api.POST("/rooms", rooms.CreateRoom)
		api.GET("/rooms/:id", rooms.GetRoom)
	}

	if cfg.StaticDir != "" {
		r.NoRoute(gin.WrapH(stdhttp.FileServer(stdhttp.Dir(cfg.StaticDir))))
	}

	// The websocket endpoint stays outside gin: gin's writer refuses to be
	// hijacked once the upgrade headers were written.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", r)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
