package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
)

type createTenantRequest struct {
	MeterID    string     `json:"meter_id"`
	FlatNumber string     `json:"flat_number"`
	Name       string     `json:"name"`
	Email      *string    `json:"email"`
	Occupants  int        `json:"occupants"`
	Remainder  bool       `json:"remainder"`
	MoveInDate *time.Time `json:"move_in_date"`
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Create(c.Request.Context(), tenantdomain.CreateRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		MeterID:    strings.TrimSpace(req.MeterID),
		FlatNumber: strings.TrimSpace(req.FlatNumber),
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		Occupants:  req.Occupants,
		Remainder:  req.Remainder,
		MoveInDate: req.MoveInDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTenants(c *gin.Context) {
	var query struct {
		Active  string `form:"active"`
		MeterID string `form:"meter_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.tenantSvc.List(c.Request.Context(), tenantdomain.ListRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		Active:     active,
		MeterID:    strings.TrimSpace(query.MeterID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	resp, err := s.tenantSvc.Get(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("tenantId")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateTenantRequest struct {
	MeterID   *string `json:"meter_id"`
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Occupants *int    `json:"occupants"`
	Remainder *bool   `json:"remainder"`
}

func (s *Server) UpdateTenant(c *gin.Context) {
	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Update(c.Request.Context(), tenantdomain.UpdateRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		ID:         strings.TrimSpace(c.Param("tenantId")),
		MeterID:    req.MeterID,
		Name:       req.Name,
		Email:      req.Email,
		Occupants:  req.Occupants,
		Remainder:  req.Remainder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type moveOutRequest struct {
	MoveOutDate *time.Time `json:"move_out_date"`
}

func (s *Server) MoveOutTenant(c *gin.Context) {
	var req moveOutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.tenantSvc.MoveOut(c.Request.Context(), tenantdomain.MoveOutRequest{
		PropertyID:  strings.TrimSpace(c.Param("id")),
		ID:          strings.TrimSpace(c.Param("tenantId")),
		MoveOutDate: req.MoveOutDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
