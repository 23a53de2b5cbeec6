package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
)

type recordMainReadingRequest struct {
	MeterID      string   `json:"meter_id"`
	Period       string   `json:"period"`
	Previous     *float64 `json:"previous"`
	Current      float64  `json:"current"`
	BilledAmount float64  `json:"billed_amount"`
	Replaced     bool     `json:"replaced"`
	FinalOld     float64  `json:"final_old"`
	InitialNew   float64  `json:"initial_new"`
}

func (s *Server) RecordMainReading(c *gin.Context) {
	var req recordMainReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.readingSvc.RecordMain(c.Request.Context(), readingdomain.RecordMainRequest{
		PropertyID:   strings.TrimSpace(c.Param("id")),
		MeterID:      strings.TrimSpace(req.MeterID),
		Period:       strings.TrimSpace(req.Period),
		Previous:     req.Previous,
		Current:      req.Current,
		BilledAmount: req.BilledAmount,
		Replaced:     req.Replaced,
		FinalOld:     req.FinalOld,
		InitialNew:   req.InitialNew,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordSubReadingRequest struct {
	TenantID   string   `json:"tenant_id"`
	Period     string   `json:"period"`
	Previous   *float64 `json:"previous"`
	Current    float64  `json:"current"`
	Replaced   bool     `json:"replaced"`
	FinalOld   float64  `json:"final_old"`
	InitialNew float64  `json:"initial_new"`
}

func (s *Server) RecordSubReading(c *gin.Context) {
	var req recordSubReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.readingSvc.RecordSub(c.Request.Context(), readingdomain.RecordSubRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		TenantID:   strings.TrimSpace(req.TenantID),
		Period:     strings.TrimSpace(req.Period),
		Previous:   req.Previous,
		Current:    req.Current,
		Replaced:   req.Replaced,
		FinalOld:   req.FinalOld,
		InitialNew: req.InitialNew,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReadings(c *gin.Context) {
	period := strings.TrimSpace(c.Query("period"))
	if period == "" {
		AbortWithError(c, newValidationError("period", "invalid_period", "period is required"))
		return
	}

	resp, err := s.readingSvc.ListForPeriod(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		period,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
