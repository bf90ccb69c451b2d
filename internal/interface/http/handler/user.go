package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/bookstore/orderflow/internal/application/user"
	"github.com/bookstore/orderflow/internal/interface/http/dto"
	"github.com/bookstore/orderflow/internal/interface/http/middleware"
	"github.com/bookstore/orderflow/pkg/jwt"
	"github.com/bookstore/orderflow/pkg/response"
)

// UserHandler 用户HTTP处理器
type UserHandler struct {
	register   *appuser.RegisterUseCase
	login      *appuser.LoginUseCase
	logout     *appuser.LogoutUseCase
	refresh    *appuser.RefreshTokenUseCase
	jwtManager *jwt.Manager
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	register *appuser.RegisterUseCase,
	login *appuser.LoginUseCase,
	logout *appuser.LogoutUseCase,
	refresh *appuser.RefreshTokenUseCase,
	jwtManager *jwt.Manager,
) *UserHandler {
	return &UserHandler{register: register, login: login, logout: logout, refresh: refresh, jwtManager: jwtManager}
}

// Register 用户注册
// @Summary      用户注册
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	info, err := h.register.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// Login 用户登录
// @Summary      用户登录
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse}
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.login.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Logout 登出
// @Summary      登出
// @Description  删除会话并将当前Access Token加入黑名单
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	if err := h.logout.Execute(c.Request.Context(), p.UserID, middleware.GetAccessToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshToken 刷新Access Token
// @Summary      刷新Token
// @Description  只接受Refresh Token;登出或重新登录后旧的Refresh Token失效
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshTokenResponse}
// @Router       /api/v1/users/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	token, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.RefreshTokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.jwtManager.AccessTokenTTL().Seconds()),
	})
}

// Me 当前登录用户
// @Summary      当前用户身份
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	response.Success(c, gin.H{"user_id": p.UserID, "role": p.Role})
}
