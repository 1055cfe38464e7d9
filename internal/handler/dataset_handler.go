package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/repository"
	"github.com/jengzang/bikeshare-insights/pkg/response"
)

// Reloader reloads and exposes the dataset snapshot
type Reloader interface {
	Load(ctx context.Context) error
	Snapshot() (*dataset.Tables, error)
}

// DatasetHandler handles dataset administration requests
type DatasetHandler struct {
	reloader Reloader
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(reloader Reloader) *DatasetHandler {
	return &DatasetHandler{reloader: reloader}
}

// Reload handles POST /api/v1/datasets/reload
func (h *DatasetHandler) Reload(c *gin.Context) {
	if err := h.reloader.Load(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}

	tables, err := h.reloader.Snapshot()
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"source":    tables.Source,
		"loaded_at": tables.LoadedAt,
		"rows":      repository.RowCounts(tables),
	})
}
