package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexidx/collex/config"
)

type collectionView struct {
	Name              string             `json:"name"`
	SearchFields      []config.FieldSpec `json:"search_fields"`
	FacetFields       []config.FieldSpec `json:"facet_fields"`
	SortFields        []config.FieldSpec `json:"sort_fields"`
	TokenRankingField string             `json:"token_ranking_field,omitempty"`
	NumDocuments      int                `json:"num_documents"`
}

// CreateCollectionHandler handles POST /collections.
// Request body: config.CollectionSchema.
func (a *API) CreateCollectionHandler(c *gin.Context) {
	var schema config.CollectionSchema
	if err := c.ShouldBindJSON(&schema); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	coll, err := a.manager.Create(schema)
	if err != nil {
		writeError(c, err)
		return
	}
	if a.metrics != nil {
		a.metrics.CollectionsActive.Set(float64(len(a.manager.List())))
	}

	c.JSON(http.StatusCreated, collectionView{
		Name:              coll.Schema().Name,
		SearchFields:      coll.Schema().SearchFields,
		FacetFields:       coll.Schema().FacetFields,
		SortFields:        coll.Schema().SortFields,
		TokenRankingField: coll.Schema().TokenRankingField,
		NumDocuments:      coll.Count(),
	})
}

// ListCollectionsHandler handles GET /collections.
func (a *API) ListCollectionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"collections": a.manager.List()})
}

// GetCollectionHandler handles GET /collections/:name.
func (a *API) GetCollectionHandler(c *gin.Context) {
	coll, err := a.manager.Get(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	schema := coll.Schema()
	c.JSON(http.StatusOK, collectionView{
		Name:              schema.Name,
		SearchFields:      schema.SearchFields,
		FacetFields:       schema.FacetFields,
		SortFields:        schema.SortFields,
		TokenRankingField: schema.TokenRankingField,
		NumDocuments:      coll.Count(),
	})
}

// DropCollectionHandler handles DELETE /collections/:name.
func (a *API) DropCollectionHandler(c *gin.Context) {
	if err := a.manager.Drop(c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	if a.metrics != nil {
		a.metrics.CollectionsActive.Set(float64(len(a.manager.List())))
	}
	c.Status(http.StatusNoContent)
}
