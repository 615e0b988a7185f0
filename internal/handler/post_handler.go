package handler

import (
	"net/http"
	"strconv"

	"Reddit_Lite/internal/middleware"
	"Reddit_Lite/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc     *service.PostService
	voteSvc *service.VoteService
}

type PostCreateReq struct {
	CommunityName string `json:"community_name"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}

func NewPostHandler(svc *service.PostService, voteSvc *service.VoteService) *PostHandler {
	return &PostHandler{svc: svc, voteSvc: voteSvc}
}

func (h *PostHandler) Create(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)

	var req PostCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}

	post, err := h.svc.Create(c.Request.Context(), uid.(uint64), req.CommunityName, req.Title, req.Body)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "post": post})
}

// ListByCommunity GET /api/post/list/:name
// 进入社区顺便回填该用户在此社区的投票镜像
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	name := c.Param("name")
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	userID := uid.(uint64)
	// 回填失败不拦截列表，票值展示退化为未知
	_ = h.voteSvc.PrimeCommunityVotes(c.Request.Context(), userID, name)

	list, err := h.svc.ListByCommunity(c.Request.Context(), userID, name, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "list": list})
}

// ListCursor GET /api/post/cursor/:name?last_id=&last_ts=&size=
func (h *PostHandler) ListCursor(c *gin.Context) {
	name := c.Param("name")
	lastID, _ := strconv.ParseUint(c.Query("last_id"), 10, 64)
	lastTS, _ := strconv.ParseInt(c.Query("last_ts"), 10, 64)
	size, _ := strconv.Atoi(c.Query("size"))

	list, nextID, nextTS, err := h.svc.ListByCommunityCursor(c.Request.Context(), name, lastID, lastTS, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "msg": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "list": list, "next_id": nextID, "next_ts": nextTS})
}

func (h *PostHandler) Get(c *gin.Context) {
	pid, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	post, err := h.svc.Get(c.Request.Context(), pid)
	if err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	uid, _ := c.Get(middleware.ContextUserIDKey)
	pid, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := h.svc.Delete(c.Request.Context(), uid.(uint64), pid); err != nil {
		writeLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}
