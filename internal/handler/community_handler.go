package handler

import (
	"net/http"
	"strconv"

	"Reddit_Lite/internal/middleware"
	"Reddit_Lite/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

type CommunityCreateReq struct {
	Name        string `json:"name"`
	PrivacyType string `json:"privacy_type"` // public / restricted / private
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}

	community, err := h.svc.Create(c.Request.Context(), uid.(uint64), req.Name, req.PrivacyType)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":         0,
		"name":         community.Name,
		"privacy_type": community.PrivacyType,
		"member_count": community.MemberCount,
	})
}

// Toggle POST /api/community/:name/membership 已加入则退出，未加入则加入
func (h *CommunityHandler) Toggle(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	name := c.Param("name")

	joined, err := h.svc.ToggleMembership(c.Request.Context(), uid.(uint64), name)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "joined": joined})
}

// MyMemberships GET /api/community/mine
func (h *CommunityHandler) MyMemberships(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)

	list, err := h.svc.MyMemberships(c.Request.Context(), uid.(uint64))
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "list": list})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.svc.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "community": community})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.List(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "list": list})
}
