package handlers

import (
	"net/http"

	"tripquote/internal/domain/models"
	"tripquote/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler lists active locations and routes for the booking form.
type CatalogHandler struct {
	Catalog services.CatalogLoader
}

type routeView struct {
	models.Route
	OriginName      string `json:"originName"`
	DestinationName string `json:"destinationName"`
}

// GET /api/catalog
func (h CatalogHandler) GetCatalog(c *gin.Context) {
	cat, err := h.Catalog.Load(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	routes := make([]routeView, 0, len(cat.Routes))
	for _, r := range cat.Routes {
		if !r.IsActive {
			continue
		}
		v := routeView{Route: r}
		if l, ok := cat.Location(r.OriginID); ok {
			v.OriginName = l.Name
		}
		if l, ok := cat.Location(r.DestinationID); ok {
			v.DestinationName = l.Name
		}
		routes = append(routes, v)
	}
	locations := make([]models.Location, 0, len(cat.Locations))
	for _, l := range cat.Locations {
		if l.IsActive {
			locations = append(locations, l)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"locations": locations,
		"routes":    routes,
	})
}
