package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/timmy/mediagrid/internal/domain"
	"github.com/timmy/mediagrid/internal/gallery"
	"github.com/timmy/mediagrid/internal/logger"
)

// CategoryInfo describes one navigable category.
type CategoryInfo struct {
	ID    domain.Category  `json:"id"`
	Label string           `json:"label"`
	Kind  domain.MediaKind `json:"kind"`
}

// ThumbnailSize is the grid cell size, in pixels, thumbnails are cropped to.
const ThumbnailSize = 121

// GridItem is a media item with its responsive thumbnail attributes.
type GridItem struct {
	domain.MediaItem
	Thumbnail domain.SrcSet `json:"srcset"`
}

// ViewResponse is a view snapshot tagged with its ID.
// Items shadows Snapshot.Items in the JSON output.
type ViewResponse struct {
	ViewID string     `json:"view_id"`
	Items  []GridItem `json:"items"`
	gallery.Snapshot
}

// LoadMoreResponse reports whether a load-more request started a fetch.
type LoadMoreResponse struct {
	Accepted bool         `json:"accepted"`
	View     ViewResponse `json:"view"`
}

// SelectCategoryRequest is the body of PUT /api/v1/views/:id/category.
type SelectCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// GalleryHandler handles gallery view endpoints.
type GalleryHandler struct {
	registry   *gallery.Registry
	categories []domain.Category
}

// NewGalleryHandler creates a new gallery handler.
// Parameters:
//   - registry: open views.
//   - categories: categories served by the configured provider.
// Returns:
//   - *GalleryHandler: initialized handler.
func NewGalleryHandler(registry *gallery.Registry, categories []domain.Category) *GalleryHandler {
	return &GalleryHandler{
		registry:   registry,
		categories: categories,
	}
}

// ListCategories handles GET /api/v1/categories.
func (h *GalleryHandler) ListCategories(c *gin.Context) {
	infos := lo.Map(h.categories, func(cat domain.Category, _ int) CategoryInfo {
		return CategoryInfo{ID: cat, Label: cat.Label(), Kind: cat.Kind()}
	})
	c.JSON(http.StatusOK, gin.H{
		"categories": infos,
	})
}

// CreateView handles POST /api/v1/views.
func (h *GalleryHandler) CreateView(c *gin.Context) {
	view := h.registry.Create(c.Request.Context())
	c.JSON(http.StatusCreated, newViewResponse(view.ID, view.Controller.Snapshot()))
}

// GetView handles GET /api/v1/views/:id.
func (h *GalleryHandler) GetView(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newViewResponse(view.ID, view.Controller.Snapshot()))
}

// SelectCategory handles PUT /api/v1/views/:id/category.
func (h *GalleryHandler) SelectCategory(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	var req SelectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	category, err := domain.ParseCategory(req.Category)
	if err == nil && !lo.Contains(h.categories, category) {
		err = domain.ErrUnknownCategory
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	ctx := logger.SetCategory(c.Request.Context(), category.String())
	snap, err := view.Controller.SelectCategory(ctx, category)
	if err != nil {
		// The view was closed between lookup and selection.
		respondViewError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, newViewResponse(view.ID, snap))
}

// LoadMore handles POST /api/v1/views/:id/more.
// A request the controller ignores is still a 200 with accepted=false.
func (h *GalleryHandler) LoadMore(c *gin.Context) {
	view, ok := h.lookup(c)
	if !ok {
		return
	}

	accepted, snap := view.Controller.RequestMore(c.Request.Context())
	status := http.StatusOK
	if accepted {
		status = http.StatusAccepted
	}
	c.JSON(status, LoadMoreResponse{
		Accepted: accepted,
		View:     newViewResponse(view.ID, snap),
	})
}

// DeleteView handles DELETE /api/v1/views/:id.
func (h *GalleryHandler) DeleteView(c *gin.Context) {
	if err := h.registry.Close(c.Param("id")); err != nil {
		respondViewError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GalleryHandler) lookup(c *gin.Context) (*gallery.View, bool) {
	view, err := h.registry.Get(c.Param("id"))
	if err != nil {
		respondViewError(c, err)
		return nil, false
	}
	return view, true
}

func newViewResponse(id string, snap gallery.Snapshot) ViewResponse {
	items := lo.Map(snap.Items, func(item domain.MediaItem, _ int) GridItem {
		return GridItem{MediaItem: item, Thumbnail: item.SrcSet(ThumbnailSize)}
	})
	return ViewResponse{ViewID: id, Items: items, Snapshot: snap}
}

func respondViewError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, gallery.ErrViewNotFound), errors.Is(err, gallery.ErrControllerClosed):
		c.JSON(http.StatusNotFound, gin.H{
			"error": gallery.ErrViewNotFound.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
	}
}
