package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/inventory"
	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/kasuganosora/slotgrid/game/slot"
	mw "github.com/kasuganosora/slotgrid/middleware"
	"github.com/kasuganosora/slotgrid/repository"
	"github.com/kasuganosora/slotgrid/resource"
	"go.uber.org/zap"
)

// InventoryHandler handles inventory REST endpoints.
type InventoryHandler struct {
	mgr    *inventory.Manager
	saves  *repository.Worker
	logger *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(mgr *inventory.Manager, saves *repository.Worker, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{mgr: mgr, saves: saves, logger: logger}
}

// Register mounts the inventory routes on g.
func (h *InventoryHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.State)
	g.POST("/spawn", h.Spawn)
	g.POST("/drag", h.BeginDrag)
	g.POST("/drag/move", h.MoveDrag)
	g.POST("/drag/cancel", h.CancelDrag)
	g.POST("/drop", h.Drop)
	g.POST("/trash", h.Trash)
	g.POST("/clear", h.Clear)
	g.POST("/save", h.Save)
	g.POST("/load", h.Load)
}

type spawnRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Qty    int    `json:"qty"     binding:"required,min=1"`
}

type dragRequest struct {
	Slot  string `json:"slot" binding:"required"`
	Split bool   `json:"split"`
}

type pointRequest struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (p pointRequest) vec() mgl32.Vec3 { return mgl32.Vec3{p.X, p.Y, p.Z} }

// State handles GET /api/inventory.
func (h *InventoryHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.mgr.State())
}

// Spawn handles POST /api/inventory/spawn.
func (h *InventoryHandler) Spawn(c *gin.Context) {
	var req spawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.mgr.Spawn(c.Request.Context(), req.ItemID, req.Qty)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"tile_id": v.TileID,
		"item_id": v.ItemID,
		"qty":     v.Qty,
		"slot":    v.ID,
	})
}

// BeginDrag handles POST /api/inventory/drag.
func (h *InventoryHandler) BeginDrag(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := h.mgr.BeginDrag(c.Request.Context(), slot.ID(req.Slot), req.Split)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// MoveDrag handles POST /api/inventory/drag/move.
func (h *InventoryHandler) MoveDrag(c *gin.Context) {
	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.mgr.MoveDrag(req.vec()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Drop handles POST /api/inventory/drop.
func (h *InventoryHandler) Drop(c *gin.Context) {
	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.mgr.Drop(c.Request.Context(), req.vec())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

// CancelDrag handles POST /api/inventory/drag/cancel.
func (h *InventoryHandler) CancelDrag(c *gin.Context) {
	res, err := h.mgr.CancelDrag(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

// Trash handles POST /api/inventory/trash.
func (h *InventoryHandler) Trash(c *gin.Context) {
	if err := h.mgr.Trash(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Clear handles POST /api/inventory/clear.
func (h *InventoryHandler) Clear(c *gin.Context) {
	n := h.mgr.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"destroyed": n})
}

// Save handles POST /api/inventory/save.
func (h *InventoryHandler) Save(c *gin.Context) {
	data := h.mgr.Snapshot()
	if err := <-h.saves.Save(c.Request.Context(), data); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(data.Stacks)})
}

// Load handles POST /api/inventory/load.
func (h *InventoryHandler) Load(c *gin.Context) {
	res := <-h.saves.Load(c.Request.Context())
	if res.Err != nil {
		h.fail(c, res.Err)
		return
	}
	if err := h.mgr.Restore(c.Request.Context(), res.Data); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded": len(res.Data.Stacks)})
}

// fail maps inventory errors to HTTP status codes.
func (h *InventoryHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, inventory.ErrUnknownSlot),
		errors.Is(err, resource.ErrItemNotFound),
		errors.Is(err, repository.ErrNoSave):
		status = http.StatusNotFound
	case errors.Is(err, inventory.ErrDragInProgress),
		errors.Is(err, inventory.ErrNoActiveDrag),
		errors.Is(err, inventory.ErrSlotEmpty):
		status = http.StatusConflict
	case errors.Is(err, inventory.ErrInventoryFull):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, item.ErrInvalidQuantity):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("inventory request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
