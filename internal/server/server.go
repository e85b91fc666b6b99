package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"music-jeopardy/internal/config"
	"music-jeopardy/internal/logger"
	"music-jeopardy/internal/lyrics"
	"music-jeopardy/internal/presence"
	"music-jeopardy/internal/spotify"
	"music-jeopardy/internal/translate"
)

type Server struct {
	store          *Store
	db             *gorm.DB
	hub            *roomHub
	registry       presence.Registry
	cfg            config.Config
	log            *zap.SugaredLogger
	persistTimeout time.Duration
	spotify        *spotify.Client
	lyrics         *lyrics.Client
	translate      *translate.Client
}

func New(conn *gorm.DB, registry presence.Registry, cfg config.Config, log *zap.SugaredLogger) *Server {
	registerValidators()
	if registry == nil {
		registry = presence.NewMemory()
	}
	if log == nil {
		log = logger.Nop()
	}
	broadcastTimeout := time.Duration(cfg.BroadcastTimeoutSeconds) * time.Second
	return &Server{
		store:          NewStore(cfg.AllowMultiTeamMembership),
		db:             conn,
		hub:            newRoomHub(broadcastTimeout, log),
		registry:       registry,
		cfg:            cfg,
		log:            log,
		persistTimeout: time.Duration(cfg.PersistTimeoutSeconds) * time.Second,
		spotify:        spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI),
		lyrics:         lyrics.New(cfg.LyricsBaseURL),
		translate:      translate.New(cfg.TranslateBaseURL),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	api := r.Group("/api")
	api.POST("/games", s.handleCreateGame)
	api.GET("/games", s.handleListGames)
	api.GET("/games/history", s.handleGameHistory)
	api.GET("/games/:id", s.handleGetGame)
	api.PATCH("/games/:id", s.handleUpdateGame)
	api.POST("/games/:id/join", s.handleJoinGame)
	api.POST("/games/:id/players/:playerID/avatar", s.handleUpdateAvatar)
	api.POST("/games/:id/teams", s.handleCreateTeam)
	api.POST("/games/:id/teams/:teamID/players", s.handleAssignTeamPlayer)
	api.DELETE("/games/:id/teams/:teamID/players/:playerID", s.handleRemoveTeamPlayer)
	api.DELETE("/games/:id/players/:playerID/teams", s.handleRemovePlayerFromAllTeams)
	api.POST("/notify-avatar-update", s.handleNotifyAvatarUpdate)

	api.POST("/spotify/token", s.handleSpotifyToken)
	api.GET("/spotify/search", s.handleSpotifySearch)
	api.GET("/lyrics/search", s.handleLyricsSearch)
	api.POST("/translate", s.handleTranslate)

	r.GET("/ws/games/:id", s.handleWebsocket)
	return r
}

// writeError maps taxonomy errors onto response codes. Internal errors
// get a generic message; the detail stays in the log.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
