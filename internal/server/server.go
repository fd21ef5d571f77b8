// Package server exposes the auction engine over HTTP. Mutating operations
// are plain POST endpoints driven by the auctioneer's control panel, while
// spectators follow along on the WebSocket stream.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gavelpoint/auctioneer/internal/auction"
	"github.com/gavelpoint/auctioneer/internal/broadcast"
)

// Server wires the engine and the broadcast hub into a gin router.
type Server struct {
	engine *auction.Engine
	hub    *broadcast.Hub
	logger *slog.Logger
	router *gin.Engine
}

// New builds the HTTP surface around an engine. The hub may be nil when the
// WebSocket stream is not wanted, e.g. in tests.
func New(engine *auction.Engine, hub *broadcast.Hub, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: engine,
		hub:    hub,
		logger: logger,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLog())
	s.routes()
	return s
}

// Handler returns the root http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/stats", s.getStats)
		api.POST("/roster", s.loadRoster)
		api.DELETE("/roster", s.clearRoster)
		api.PUT("/settings", s.updateSettings)

		teams := api.Group("/teams/:id")
		{
			teams.POST("/captain", s.assignCaptain)
			teams.POST("/retain", s.retainPlayer)
		}

		a := api.Group("/auction")
		{
			a.POST("/start", s.startAuction)
			a.POST("/stop", s.stopAuction)
			a.POST("/finish", s.finishAuction)
			a.POST("/reset", s.resetAuction)
			a.POST("/lots/:playerID/start", s.startBidding)
			a.POST("/bid", s.placeBid)
			a.POST("/sell", s.sellPlayer)
			a.POST("/unsold", s.markUnsold)
			a.POST("/cancel", s.cancelBidding)
			a.POST("/undo-bid", s.undoBid)
			a.POST("/undo-sale", s.undoSale)
			a.POST("/fast-track/start", s.startFastTrack)
			a.POST("/fast-track/end", s.endFastTrack)
		}
	}

	if s.hub != nil {
		s.router.GET("/ws", gin.WrapH(s.hub))
	}
}

// requestLog logs each request after it completes.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
		)
	}
}

// respond sends a successful JSON body.
func respond(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": "ok", "data": data})
}

// fail maps engine errors onto HTTP status codes.
func fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, auction.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, auction.ErrInvalidState),
		errors.Is(err, auction.ErrInsufficientBudget),
		errors.Is(err, auction.ErrTeamFull),
		errors.Is(err, auction.ErrValidation):
		code = http.StatusBadRequest
	}
	c.JSON(code, gin.H{"status": "error", "error": err.Error()})
}

func (s *Server) getState(c *gin.Context) {
	respond(c, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) getStats(c *gin.Context) {
	respond(c, http.StatusOK, s.engine.Stats())
}

func (s *Server) loadRoster(c *gin.Context) {
	var req struct {
		Players []auction.PlayerInput `json:"players" binding:"required"`
		Teams   []string              `json:"teams"`
	}
	if err := c.BindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %s", auction.ErrValidation, err))
		return
	}
	snap, err := s.engine.LoadRoster(c.Request.Context(), req.Players, req.Teams)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, snap)
}

func (s *Server) clearRoster(c *gin.Context) {
	if err := s.engine.ClearRoster(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (s *Server) updateSettings(c *gin.Context) {
	var settings auction.Settings
	if err := c.BindJSON(&settings); err != nil {
		fail(c, fmt.Errorf("%w: %s", auction.ErrValidation, err))
		return
	}
	if err := s.engine.UpdateSettings(c.Request.Context(), settings); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, settings)
}

func (s *Server) assignCaptain(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, fmt.Errorf("%w: team id must be numeric", auction.ErrValidation))
		return
	}
	var req struct {
		PlayerID string `json:"player_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %s", auction.ErrValidation, err))
		return
	}
	if err := s.engine.AssignCaptain(c.Request.Context(), teamID, req.PlayerID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) retainPlayer(c *gin.Context) {
	teamID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, fmt.Errorf("%w: team id must be numeric", auction.ErrValidation))
		return
	}
	var req struct {
		PlayerID string `json:"player_id" binding:"required"`
		Price    int    `json:"price"`
	}
	if err := c.BindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %s", auction.ErrValidation, err))
		return
	}
	if err := s.engine.RetainPlayer(c.Request.Context(), teamID, req.PlayerID, req.Price); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) startAuction(c *gin.Context) {
	if err := s.engine.StartAuction(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": s.engine.Status()})
}

func (s *Server) stopAuction(c *gin.Context) {
	if err := s.engine.StopAuction(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": s.engine.Status()})
}

func (s *Server) finishAuction(c *gin.Context) {
	if err := s.engine.FinishAuction(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": s.engine.Status()})
}

func (s *Server) resetAuction(c *gin.Context) {
	if err := s.engine.ResetAuction(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) startBidding(c *gin.Context) {
	bid, err := s.engine.StartBidding(c.Request.Context(), c.Param("playerID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, bid)
}

func (s *Server) placeBid(c *gin.Context) {
	var req struct {
		TeamID int `json:"team_id" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %s", auction.ErrValidation, err))
		return
	}
	bid, err := s.engine.PlaceBid(c.Request.Context(), req.TeamID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, bid)
}

func (s *Server) sellPlayer(c *gin.Context) {
	sale, err := s.engine.SellPlayer(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, sale)
}

func (s *Server) markUnsold(c *gin.Context) {
	player, err := s.engine.MarkUnsold(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, player)
}

func (s *Server) cancelBidding(c *gin.Context) {
	player, err := s.engine.CancelBidding(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, player)
}

func (s *Server) undoBid(c *gin.Context) {
	bid, err := s.engine.UndoCurrentBid(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, bid)
}

func (s *Server) undoSale(c *gin.Context) {
	player, err := s.engine.UndoLastSale(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, player)
}

func (s *Server) startFastTrack(c *gin.Context) {
	if err := s.engine.StartFastTrack(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": s.engine.Status()})
}

func (s *Server) endFastTrack(c *gin.Context) {
	if err := s.engine.EndFastTrack(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"status": s.engine.Status()})
}
