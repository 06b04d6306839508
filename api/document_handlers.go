package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexidx/collex/model"
	"github.com/flexidx/collex/services"
)

// AddDocumentHandler handles POST /collections/:name/documents.
// Request body: the document JSON.
func (a *API) AddDocumentHandler(c *gin.Context) {
	name := c.Param("name")
	var coll services.Indexer
	found, err := a.manager.Get(name)
	if err != nil {
		writeError(c, err)
		return
	}
	coll = found

	var doc model.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	id, err := coll.Add(doc)
	if err != nil {
		writeError(c, err)
		return
	}
	if a.metrics != nil {
		a.metrics.DocumentsIndexedTotal.WithLabelValues(name).Inc()
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetDocumentHandler handles GET /collections/:name/documents/:id.
func (a *API) GetDocumentHandler(c *gin.Context) {
	found, err := a.manager.Get(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	var coll services.Getter = found

	doc, err := coll.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// RemoveDocumentHandler handles DELETE /collections/:name/documents/:id.
func (a *API) RemoveDocumentHandler(c *gin.Context) {
	name := c.Param("name")
	found, err := a.manager.Get(name)
	if err != nil {
		writeError(c, err)
		return
	}
	var coll services.Indexer = found

	if err := coll.Remove(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	if a.metrics != nil {
		a.metrics.DocumentsRemovedTotal.WithLabelValues(name).Inc()
	}
	c.Status(http.StatusNoContent)
}
