package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/propease/internal/billing/domain"
)

const summaryCacheTTL = 30 * time.Second

type generateBillsRequest struct {
	Period string `json:"period"`
}

func (s *Server) GenerateBills(c *gin.Context) {
	var req generateBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	propertyID := strings.TrimSpace(c.Param("id"))
	resp, err := s.billingSvc.Generate(c.Request.Context(), billingdomain.GenerateRequest{
		PropertyID: propertyID,
		Period:     strings.TrimSpace(req.Period),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.summaryCache.Delete(propertyID + "/" + resp.Period)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBills(c *gin.Context) {
	var query struct {
		Period   string `form:"period"`
		TenantID string `form:"tenant_id"`
		Status   string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), billingdomain.ListRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		Period:     strings.TrimSpace(query.Period),
		TenantID:   strings.TrimSpace(query.TenantID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBillByID(c *gin.Context) {
	resp, err := s.billingSvc.Get(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("billId")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkBillPaid(c *gin.Context) {
	propertyID := strings.TrimSpace(c.Param("id"))
	resp, err := s.billingSvc.MarkPaid(c.Request.Context(),
		propertyID,
		strings.TrimSpace(c.Param("billId")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.summaryCache.Delete(propertyID + "/" + resp.Period)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BillingSummary(c *gin.Context) {
	propertyID := strings.TrimSpace(c.Param("id"))
	period := strings.TrimSpace(c.Query("period"))
	if period == "" {
		AbortWithError(c, newValidationError("period", "invalid_period", "period is required"))
		return
	}

	cacheKey := propertyID + "/" + period
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	resp, err := s.billingSvc.Summary(c.Request.Context(), propertyID, period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.summaryCache.Set(cacheKey, *resp, summaryCacheTTL)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadBillPDF(c *gin.Context) {
	doc, err := s.billingSvc.RenderPDF(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("billId")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bill.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
