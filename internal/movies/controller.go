package movies

import (
	"net/http"

	"showtix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// NowPlaying proxies the external catalog's now-playing list for the admin
// show-creation screen
func (ctrl *Controller) NowPlaying(c *gin.Context) {
	movies, err := ctrl.service.NowPlaying(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadGateway, "Failed to reach movie catalog", nil, err.Error())
		return
	}
	response.RespondJSON(c, "success", http.StatusOK, "Now playing movies retrieved successfully", movies, nil)
}
