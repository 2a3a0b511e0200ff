package controllers

import (
	"net/http"
	"strconv"

	"vcall-signal-service/services/container"

	"github.com/gin-gonic/gin"
)

// CallRecordController 处理通话记录相关的请求
type CallRecordController struct {
	BaseControllerImpl
}

// NewCallRecordController 创建一个新的通话记录控制器
func (f *ControllerFactory) NewCallRecordController(ctx *gin.Context) *CallRecordController {
	return &CallRecordController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleCallRecordFunc 返回一个处理通话记录请求的Gin处理函数
func HandleCallRecordFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewCallRecordController(ctx)

		switch method {
		case "getCallRecords":
			controller.GetCallRecords()
		case "getCallRecord":
			controller.GetCallRecord()
		case "getCallRecordsByUser":
			controller.GetCallRecordsByUser()
		case "getStatistics":
			controller.GetStatistics()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// pagination 读取分页查询参数
func (c *CallRecordController) pagination() (int, int) {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// GetCallRecords 获取通话记录列表
// @Summary      Get Call Records
// @Description  Get a list of all call records in the system, with pagination
// @Tags         CallRecord
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number, default is 1" example:"1"
// @Param        page_size query int false "Items per page, default is 10" example:"10"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /calls [get]
func (c *CallRecordController) GetCallRecords() {
	page, pageSize := c.pagination()

	calls, total, err := c.Container.GetCallRecordService().GetAllCallRecords(page, pageSize)
	if err != nil {
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取通话记录失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data": gin.H{
			"total":       total,
			"page":        page,
			"page_size":   pageSize,
			"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
			"records":     calls,
		},
	})
}

// GetCallRecord 获取单个通话记录
// @Summary      Get Call Record By ID
// @Description  Get details of a specific call record by ID
// @Tags         CallRecord
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Call Record ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /calls/{id} [get]
func (c *CallRecordController) GetCallRecord() {
	id := c.Context.Param("id")
	recordID, err := strconv.Atoi(id)
	if err != nil {
		c.Context.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的通话记录ID",
			"data":    nil,
		})
		return
	}

	call, err := c.Container.GetCallRecordService().GetCallRecordByID(uint(recordID))
	if err != nil {
		c.Context.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    call,
	})
}

// GetCallRecordsByUser 获取指定用户参与的通话记录
// @Summary      Get Call Records By User
// @Description  Get call records where the user is caller or callee
// @Tags         CallRecord
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Param        page query int false "Page number, default is 1" example:"1"
// @Param        page_size query int false "Items per page, default is 10" example:"10"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /calls/user/{user_id} [get]
func (c *CallRecordController) GetCallRecordsByUser() {
	userID := c.Context.Param("user_id")
	page, pageSize := c.pagination()

	calls, total, err := c.Container.GetCallRecordService().GetCallRecordsByUserID(userID, page, pageSize)
	if err != nil {
		c.Context.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
			"data":    nil,
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data": gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
			"records":   calls,
		},
	})
}

// GetStatistics 获取通话统计信息
// @Summary      Get Call Statistics
// @Description  Get aggregate statistics of all calls
// @Tags         CallRecord
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /calls/statistics [get]
func (c *CallRecordController) GetStatistics() {
	statistics, err := c.Container.GetCallRecordService().GetCallStatistics()
	if err != nil {
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "获取通话统计失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "成功",
		"data":    statistics,
	})
}
