package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"toast/api/internal/apierr"
	"toast/api/internal/crud"
	"toast/api/internal/ids"
	"toast/api/internal/middleware"
)

type resourceService[T, C, P any] interface {
	List(ctx context.Context, owner string, req crud.PageRequest) (crud.Listing[T], error)
	Get(ctx context.Context, owner, id string) (T, error)
	Create(ctx context.Context, owner string, in C) (string, error)
	Patch(ctx context.Context, owner, id string, in P) (crud.Outcome, error)
	Delete(ctx context.Context, owner, id string) error
}

func registerResource[T, C, P any](group *gin.RouterGroup, name string, svc resourceService[T, C, P]) {
	group.GET("", listHandler(svc.List))
	group.POST("", createHandler(svc.Create))
	group.GET("/:id", getHandler(name, svc.Get))
	group.PATCH("/:id", patchHandler(name, svc.Patch))
	group.DELETE("/:id", deleteHandler(name, svc.Delete))
}

type pageQuery struct {
	Limit *int `form:"limit" binding:"omitempty,min=0"`
	Page  *int `form:"page" binding:"omitempty,min=0"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createResponse struct {
	ID string `json:"id"`
}

// bindJSON aborts with 422 when the body does not decode or validate.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.AbortWithError(c, apierr.Wrap(apierr.KindUnprocessable, bindMessage(err), err))
		return false
	}
	return true
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Sprintf("Field %s is required.", fe.Field())
		}
		return fmt.Sprintf("Field %s failed the %s check.", fe.Field(), fe.Tag())
	}
	return err.Error()
}

// pathID treats a malformed id like an absent one.
func pathID(c *gin.Context, param, name string) (string, bool) {
	id := c.Param(param)
	if !ids.ValidUUID(id) {
		middleware.AbortWithError(c, apierr.NotFound(name+" not found."))
		return "", false
	}
	return id, true
}

func listHandler[T any](list func(ctx context.Context, owner string, req crud.PageRequest) (crud.Listing[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q pageQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			middleware.AbortWithError(c, apierr.Wrap(apierr.KindUnprocessable, bindMessage(err), err))
			return
		}

		listing, err := list(c.Request.Context(), middleware.CurrentUser(c).ID, crud.PageRequest{Limit: q.Limit, Page: q.Page})
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, listResponse[T]{Items: listing.Items, Limit: listing.Limit, Page: listing.Page})
	}
}

func getHandler[T any](name string, get func(ctx context.Context, owner, id string) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", name)
		if !ok {
			return
		}

		item, err := get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func createHandler[C any](create func(ctx context.Context, owner string, in C) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in C
		if !bindJSON(c, &in) {
			return
		}

		id, err := create(c.Request.Context(), middleware.CurrentUser(c).ID, in)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, createResponse{ID: id})
	}
}

func patchHandler[P any](name string, patch func(ctx context.Context, owner, id string, in P) (crud.Outcome, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", name)
		if !ok {
			return
		}

		var in P
		if !bindJSON(c, &in) {
			return
		}

		outcome, err := patch(c.Request.Context(), middleware.CurrentUser(c).ID, id, in)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		if outcome == crud.NoChanges {
			c.JSON(http.StatusOK, messageResponse{Message: "No changes."})
			return
		}
		c.JSON(http.StatusOK, messageResponse{Message: "Patch successful."})
	}
}

func deleteHandler(name string, del func(ctx context.Context, owner, id string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id", name)
		if !ok {
			return
		}

		if err := del(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
			middleware.AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, messageResponse{Message: "Delete successful."})
	}
}
