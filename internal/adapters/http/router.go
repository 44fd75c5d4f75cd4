package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Yash-Kunal/scriptly-deploy/internal/adapters/signal"
	"github.com/Yash-Kunal/scriptly-deploy/internal/config"
	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

// ClientTokenMiddleware gives every browser a stable opaque token used
// as the fallback identity when the client supplies no userId.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ScriptlySessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").
			Str("sid", c.GetString("client_token")).
			Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	files := api.Group("/rooms", AuthMiddleware(cfg.Secret))
	files.GET("/:roomId/files", getRoomFiles(ctl))
	files.PUT("/:roomId/files", putRoomFiles(ctl))

	return r
}

// getRoomFiles mirrors the websocket load path for clients that fetch
// over plain HTTP: load the set, seeding a default on first contact.
func getRoomFiles(ctl *signal.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := domain.RoomID(c.Param("roomId"))
		files, err := ctl.Orch.LoadFiles(c.Request.Context(), room)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch files"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": files})
	}
}

// putRoomFiles replaces the room's entire file list (upsert).
func putRoomFiles(ctl *signal.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := domain.RoomID(c.Param("roomId"))
		var body struct {
			Files []domain.RoomFile `json:"files"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if err := ctl.Orch.SaveFiles(c.Request.Context(), room, body.Files); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save files"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": body.Files})
	}
}
