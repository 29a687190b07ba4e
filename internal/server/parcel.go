package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
)

func (s *Server) CreateParcel(c *gin.Context) {
	var req parceldomain.CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parcelSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListParcels(c *gin.Context) {
	var query parceldomain.ListParcelRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parcelSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetParcel(c *gin.Context) {
	resp, err := s.parcelSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("parcel_no")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateParcel(c *gin.Context) {
	var req parceldomain.UpdateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ParcelNo = strings.TrimSpace(c.Param("parcel_no"))

	resp, err := s.parcelSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteParcel(c *gin.Context) {
	if err := s.parcelSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("parcel_no"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
