package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"
)

// RegisterRoutes mounts the JSON API under /api/budgetcraft. Every route
// requires an authenticated user, whose id scopes all data.
func RegisterRoutes(se *core.ServeEvent, d *Deps) {
	g := se.Router.Group("/api/budgetcraft")
	g.BindFunc(RequestLogger(log.StandardLogger()))
	g.Bind(apis.RequireAuth())

	// Inputs
	g.GET("/inputs", HandleInputList(d))
	g.POST("/inputs", HandleInputCreate(d))
	g.GET("/inputs/import/template", HandleInputTemplate())
	g.POST("/inputs/import", HandleInputImportValidate(d))
	g.POST("/inputs/import/commit", HandleInputImportCommit(d))
	g.POST("/inputs/import/errors", HandleInputImportErrors(d))
	g.GET("/inputs/{id}", HandleInputGet(d))
	g.PATCH("/inputs/{id}", HandleInputUpdate(d))
	g.DELETE("/inputs/{id}", HandleInputDelete(d))
	g.POST("/inputs/{id}/prices", HandleInputPriceAdd(d))

	// Compositions
	g.GET("/compositions", HandleCompositionList(d))
	g.POST("/compositions", HandleCompositionCreate(d))
	g.GET("/compositions/{id}", HandleCompositionGet(d))
	g.PUT("/compositions/{id}", HandleCompositionUpdate(d))
	g.DELETE("/compositions/{id}", HandleCompositionDelete(d))

	// Budgets
	g.GET("/budgets", HandleBudgetList(d))
	g.POST("/budgets", HandleBudgetCreate(d))
	g.GET("/budgets/{id}", HandleBudgetGet(d))
	g.PATCH("/budgets/{id}", HandleBudgetUpdate(d))
	g.DELETE("/budgets/{id}", HandleBudgetDelete(d))
	g.PUT("/budgets/{id}/bdi", HandleBudgetBDISet(d))
	g.DELETE("/budgets/{id}/bdi", HandleBudgetBDIClear(d))

	// Budget tree
	g.POST("/budgets/{id}/packages", HandlePackageAdd(d))
	g.PATCH("/budgets/{id}/packages/{pkgId}", HandlePackageRename(d))
	g.DELETE("/budgets/{id}/packages/{pkgId}", HandlePackageDelete(d))
	g.POST("/budgets/{id}/packages/{pkgId}/move", HandlePackageMove(d))
	g.POST("/budgets/{id}/packages/{pkgId}/subgroups", HandleSubgroupAdd(d))
	g.PATCH("/budgets/{id}/packages/{pkgId}/subgroups/{sgId}", HandleSubgroupRename(d))
	g.DELETE("/budgets/{id}/packages/{pkgId}/subgroups/{sgId}", HandleSubgroupDelete(d))
	g.POST("/budgets/{id}/packages/{pkgId}/subgroups/{sgId}/move", HandleSubgroupMove(d))
	g.POST("/budgets/{id}/instances", HandleInstanceBind(d))
	g.PATCH("/budgets/{id}/instances/{instId}", HandleInstanceQuantity(d))
	g.DELETE("/budgets/{id}/instances/{instId}", HandleInstanceDelete(d))
	g.POST("/budgets/{id}/instances/{instId}/move", HandleInstanceMove(d))
	g.POST("/budgets/{id}/instances/{instId}/resync", HandleInstanceResync(d))

	// Reports and exports
	g.GET("/budgets/{id}/summary", HandleBudgetSummary(d))
	g.GET("/budgets/{id}/abc", HandleBudgetABC(d))
	g.GET("/budgets/{id}/abc/export/{format}", HandleABCExport(d))
	g.GET("/budgets/{id}/export/{format}", HandleBudgetExport(d))
	g.GET("/compare", HandleCompare(d))
	g.GET("/compare/export/excel", HandleCompareExport(d))
	g.GET("/dashboard", HandleDashboard(d))
}
