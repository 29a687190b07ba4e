package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
)

func (s *Server) CreateShipment(c *gin.Context) {
	var req shipmentdomain.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.shipmentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListShipments(c *gin.Context) {
	var query shipmentdomain.ListShipmentRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.shipmentSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetShipment(c *gin.Context) {
	resp, err := s.shipmentSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("shipment_no")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateShipment(c *gin.Context) {
	var req shipmentdomain.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ShipmentNo = strings.TrimSpace(c.Param("shipment_no"))

	resp, err := s.shipmentSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteShipment(c *gin.Context) {
	if err := s.shipmentSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("shipment_no"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListShipmentCustomers(c *gin.Context) {
	resp, err := s.shipmentSvc.Customers(c.Request.Context(), strings.TrimSpace(c.Param("shipment_no")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
