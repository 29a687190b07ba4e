package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/smartlogix/cargopro/internal/document/domain"
)

// CreateDocument accepts a multipart form: metadata fields plus a
// "file" part.
func (s *Server) CreateDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, documentdomain.ErrMissingFile)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, documentdomain.ErrMissingFile)
		return
	}
	defer file.Close()

	resp, err := s.documentSvc.Create(c.Request.Context(), documentdomain.CreateDocumentRequest{
		DocumentNo:   strings.TrimSpace(c.PostForm("document_no")),
		ShipmentNo:   strings.TrimSpace(c.PostForm("shipment_no")),
		CustomerID:   strings.TrimSpace(c.PostForm("customer_id")),
		ParcelNo:     strings.TrimSpace(c.PostForm("parcel_no")),
		DocumentType: strings.TrimSpace(c.PostForm("document_type")),
		Description:  strings.TrimSpace(c.PostForm("description")),
		FileName:     fileHeader.Filename,
		File:         file,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDocuments(c *gin.Context) {
	var query documentdomain.ListDocumentRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDocument(c *gin.Context) {
	resp, err := s.documentSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("document_no")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdateDocument accepts a multipart form. Absent fields stay
// untouched; a "file" part replaces the stored file.
func (s *Server) UpdateDocument(c *gin.Context) {
	req := documentdomain.UpdateDocumentRequest{
		DocumentNo: strings.TrimSpace(c.Param("document_no")),
	}

	if value, ok := c.GetPostForm("customer_id"); ok {
		trimmed := strings.TrimSpace(value)
		req.CustomerID = &trimmed
	}
	if value, ok := c.GetPostForm("parcel_no"); ok {
		trimmed := strings.TrimSpace(value)
		req.ParcelNo = &trimmed
	}
	if value, ok := c.GetPostForm("document_type"); ok {
		trimmed := strings.TrimSpace(value)
		req.DocumentType = &trimmed
	}
	if value, ok := c.GetPostForm("description"); ok {
		trimmed := strings.TrimSpace(value)
		req.Description = &trimmed
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			AbortWithError(c, documentdomain.ErrMissingFile)
			return
		}
		defer file.Close()
		req.FileName = fileHeader.Filename
		req.File = file
	}

	resp, err := s.documentSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	if err := s.documentSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("document_no"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
