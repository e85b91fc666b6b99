package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"music-jeopardy/internal/translate"
)

type spotifyTokenRequest struct {
	Code string `json:"code" binding:"required"`
}

type lyricsSearchQuery struct {
	SongTitle string `form:"songTitle" binding:"required"`
	Artist    string `form:"artist" binding:"required"`
}

type translateRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceLang string `json:"sourceLang" binding:"required"`
	TargetLang string `json:"targetLang" binding:"required"`
}

func (s *Server) handleSpotifyToken(c *gin.Context) {
	var req spotifyTokenRequest
	if !bindJSON(c, &req, bindMessages{
		"Code": {"required": "code is required"},
	}, "invalid token request") {
		return
	}
	token, err := s.spotify.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		s.log.Warnw("spotify token exchange failed", "error", err)
		s.writeError(c, errUpstream("music catalog provider is unavailable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"expires_in":    token.ExpiresIn,
	})
}

func (s *Server) handleSpotifySearch(c *gin.Context) {
	accessToken := bearerToken(c)
	if accessToken == "" {
		s.writeError(c, errUnauthorized("missing access token"))
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		s.writeError(c, errInvalidInput("q is required"))
		return
	}
	tracks, err := s.spotify.SearchTracks(c.Request.Context(), accessToken, query)
	if err != nil {
		s.log.Warnw("spotify search failed", "query", query, "error", err)
		s.writeError(c, errUpstream("music catalog provider is unavailable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

func (s *Server) handleLyricsSearch(c *gin.Context) {
	var query lyricsSearchQuery
	if !bindQuery(c, &query, bindMessages{
		"SongTitle": {"required": "songTitle is required"},
		"Artist":    {"required": "artist is required"},
	}, "invalid lyrics query") {
		return
	}
	snippets, err := s.lyrics.Search(c.Request.Context(), query.SongTitle, query.Artist)
	if err != nil {
		s.log.Warnw("lyrics search failed", "song", query.SongTitle, "artist", query.Artist, "error", err)
		s.writeError(c, errUpstream("lyrics provider is unavailable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"snippets": snippets})
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req, bindMessages{
		"Text":       {"required": "text is required"},
		"SourceLang": {"required": "sourceLang is required"},
		"TargetLang": {"required": "targetLang is required"},
	}, "invalid translation request") {
		return
	}
	if !translate.Supported(req.SourceLang) || !translate.Supported(req.TargetLang) {
		s.writeError(c, errInvalidInput("unsupported language"))
		return
	}
	translated, err := s.translate.Translate(c.Request.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		s.log.Warnw("translation failed", "source", req.SourceLang, "target", req.TargetLang, "error", err)
		s.writeError(c, errUpstream("translation provider is unavailable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"translated_text": translated})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
