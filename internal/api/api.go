// Package api serves the cold store over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"vector-editor/internal/features"
	"vector-editor/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// Store is the subset of the cold store the API needs.
type Store interface {
	CreateLayer(ctx context.Context, l features.Layer) (features.Layer, error)
	Layers(ctx context.Context) ([]features.Layer, error)
	Layer(ctx context.Context, id string) (features.Layer, error)
	CreateFeature(ctx context.Context, f *geojson.Feature) error
	Feature(ctx context.Context, id string) (*geojson.Feature, error)
	FeaturesByLayer(ctx context.Context, layerID string) (*geojson.FeatureCollection, error)
	DeleteFeature(ctx context.Context, id string) error
	Records(ctx context.Context, featureID string) ([]store.EditRecord, error)
	Restore(ctx context.Context, recordID int64) error
}

// Handler holds the route handlers.
type Handler struct {
	store Store

	// OnChange is called after a request modified a layer's features.
	OnChange func(layerID string)
}

type layerBody struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// NewRouter builds the gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	layers := r.Group("/layers")
	{
		layers.GET("", h.ListLayers)
		layers.POST("", h.CreateLayer)
		layers.GET("/:id/features", h.LayerFeatures)
		layers.POST("/:id/features", h.CreateFeature)
	}
	feats := r.Group("/features")
	{
		feats.GET("/:id", h.GetFeature)
		feats.DELETE("/:id", h.DeleteFeature)
		feats.GET("/:id/records", h.FeatureRecords)
	}
	r.POST("/records/:id/restore", h.RestoreRecord)
	return r
}

// NewHandler creates a handler over s.
func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) ListLayers(c *gin.Context) {
	layers, err := h.store.Layers(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to list layers")
		return
	}
	c.JSON(http.StatusOK, layers)
}

func (h *Handler) CreateLayer(c *gin.Context) {
	var body layerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid JSON format",
			"details": err.Error(),
		})
		return
	}
	l, err := h.store.CreateLayer(c.Request.Context(), features.Layer{ID: body.ID, Name: body.Name, Color: body.Color})
	if err != nil {
		fail(c, err, "Failed to create layer")
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *Handler) LayerFeatures(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.Layer(c.Request.Context(), id); err != nil {
		fail(c, err, "Layer not found")
		return
	}
	fc, err := h.store.FeaturesByLayer(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to load features")
		return
	}
	c.JSON(http.StatusOK, fc)
}

// CreateFeature imports one GeoJSON feature into a layer. A missing id is
// generated.
func (h *Handler) CreateFeature(c *gin.Context) {
	layerID := c.Param("id")
	data, err := c.GetRawData()
	if err != nil {
		fail(c, err, "Failed to read body")
		return
	}
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid GeoJSON feature",
			"details": err.Error(),
		})
		return
	}
	if features.ID(f) == "" {
		f.ID = uuid.NewString()
	}
	if f.Properties == nil {
		f.Properties = geojson.Properties{}
	}
	f.Properties[features.PropLayerID] = layerID
	if err := h.store.CreateFeature(c.Request.Context(), f); err != nil {
		fail(c, err, "Failed to create feature")
		return
	}
	h.changed(layerID)
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetFeature(c *gin.Context) {
	f, err := h.store.Feature(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Feature not found")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFeature(c *gin.Context) {
	id := c.Param("id")
	f, err := h.store.Feature(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Feature not found")
		return
	}
	if err := h.store.DeleteFeature(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete feature")
		return
	}
	h.changed(features.LayerID(f))
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) FeatureRecords(c *gin.Context) {
	recs, err := h.store.Records(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to load records")
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) RestoreRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid record id",
			"details": err.Error(),
		})
		return
	}
	if err := h.store.Restore(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to restore record")
		return
	}
	h.changed("")
	c.JSON(http.StatusOK, gin.H{"restored": id})
}

func (h *Handler) changed(layerID string) {
	if h.OnChange != nil {
		h.OnChange(layerID)
	}
}

func fail(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalid), errors.Is(err, store.ErrNoRestore):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}
