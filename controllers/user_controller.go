package controllers

import (
	"net/http"

	"vcall-signal-service/services/container"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户花名册与联系人相关的请求
type UserController struct {
	BaseControllerImpl
}

// NewUserController 创建一个新的用户控制器
func (f *ControllerFactory) NewUserController(ctx *gin.Context) *UserController {
	return &UserController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleUserFunc 返回一个处理用户请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewUserController(ctx)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getContacts":
			controller.GetContacts()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// GetUsers 获取用户花名册
// @Summary      Get Users
// @Description  Get all users with their presence status
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
func (c *UserController) GetUsers() {
	users, err := c.Container.GetUserService().GetAllUsers()
	if err != nil {
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取用户列表失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    users,
	})
}

// GetContacts 获取当前用户的联系人列表
// @Summary      Get Contacts
// @Description  Get the caller's contacts ordered by most recent call
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/contacts [get]
func (c *UserController) GetContacts() {
	userID := c.Context.GetString("userID")
	if userID == "" {
		c.Context.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "未认证",
			"data":    nil,
		})
		return
	}

	contacts, err := c.Container.GetUserService().GetContacts(userID)
	if err != nil {
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取联系人失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    contacts,
	})
}
