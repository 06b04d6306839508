// Package services defines the contracts the HTTP layer programs against,
// insulating api from the engine/collection package layout (spec.md §2
// "HTTP/CLI frontend" as an external collaborator of the core).
package services

import (
	"github.com/flexidx/collex/config"
	"github.com/flexidx/collex/internal/search"
	"github.com/flexidx/collex/model"
)

// Indexer adds and removes documents in a collection.
type Indexer interface {
	Add(doc model.Document) (string, error)
	Remove(externalID string) error
}

// Getter retrieves a single document by its external id.
type Getter interface {
	Get(externalID string) (model.Document, error)
}

// Searcher runs a search request against a collection.
type Searcher interface {
	Search(req search.Request) (search.Result, error)
}

// CollectionAccessor combines the operations a single collection exposes
// to the HTTP layer. *collection.Collection satisfies this by structural
// typing. The api handlers obtain the concrete collection from
// engine.Manager and narrow it to Indexer, Getter or Searcher; they do not
// use CollectionAccessor itself.
type CollectionAccessor interface {
	Indexer
	Getter
	Searcher
	Schema() config.CollectionSchema
	Count() int
}
