package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/transport/http/dto"
	"marketplace_admin/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const includeDeletedParam = "include_deleted"

// ListPublications godoc
// @Summary Список публикаций с локальными оверлеями
// @Description Остальные параметры запроса передаются бэкенду как есть.
// @Tags publications
// @Produce json
// @Param include_deleted query bool false "Показывать удалённые"
// @Success 200 {object} response.Response{data=[]models.Publication}
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/publications [get]
func (r *Routers) ListPublications(c echo.Context) error {
	const op = "http.routers.ListPublications"

	q := dto.ListPublicationsQuery{Filters: map[string][]string{}}

	for key, values := range c.QueryParams() {
		if key == includeDeletedParam {
			continue
		}
		q.Filters[key] = values
	}

	if raw := c.QueryParam(includeDeletedParam); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("include_deleted must be a boolean"))
		}
		q.IncludeDeleted = v
	}

	pubs, err := r.PublicationService.GetAll(c.Request().Context(), q)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pubs))
}

// GetPublication godoc
// @Summary Публикация по id
// @Tags publications
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} response.Response{data=models.Publication}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/publications/{id} [get]
func (r *Routers) GetPublication(c echo.Context) error {
	const op = "http.routers.GetPublication"

	pub, err := r.PublicationService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pub))
}

// CreatePublication godoc
// @Summary Создание публикации
// @Description Статус по умолчанию en_revision. Extras сохраняются локально.
// @Tags publications
// @Accept json
// @Produce json
// @Param request body dto.CreatePublicationRequest true "Публикация"
// @Success 201 {object} response.Response{data=models.Publication}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/publications [post]
func (r *Routers) CreatePublication(c echo.Context) error {
	const op = "http.routers.CreatePublication"

	var req dto.CreatePublicationRequest
	if err := bindStrict(c, &req); err != nil {
		r.log.Warn("invalid format request", slog.String("op", op), slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	pub, err := r.PublicationService.Create(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(pub))
}

// UpdatePublication godoc
// @Summary Частичное обновление публикации
// @Tags publications
// @Accept json
// @Produce json
// @Param id path string true "ID публикации"
// @Param request body dto.UpdatePublicationRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Publication}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/publications/{id} [patch]
func (r *Routers) UpdatePublication(c echo.Context) error {
	const op = "http.routers.UpdatePublication"

	var req dto.UpdatePublicationRequest
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	pub, err := r.PublicationService.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pub))
}

// ChangeStatus godoc
// @Summary Смена статуса публикации
// @Tags publications
// @Accept json
// @Produce json
// @Param id path string true "ID публикации"
// @Param request body dto.ChangeStatusRequest true "Новый статус"
// @Success 200 {object} response.Response{data=models.Publication}
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход"
// @Router /api/v1/publications/{id}/status [patch]
func (r *Routers) ChangeStatus(c echo.Context) error {
	const op = "http.routers.ChangeStatus"

	var req dto.ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	pub, err := r.PublicationService.ChangeStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pub))
}

// DeletePublication godoc
// @Summary Удаление публикации (статус eliminado)
// @Tags publications
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} response.Response{data=models.Publication}
// @Router /api/v1/publications/{id} [delete]
func (r *Routers) DeletePublication(c echo.Context) error {
	const op = "http.routers.DeletePublication"

	pub, err := r.PublicationService.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pub))
}

// RestorePublication godoc
// @Summary Восстановление публикации (статус activo)
// @Tags publications
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} response.Response{data=models.Publication}
// @Router /api/v1/publications/{id}/restore [post]
func (r *Routers) RestorePublication(c echo.Context) error {
	const op = "http.routers.RestorePublication"

	pub, err := r.PublicationService.Restore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pub))
}

func (r *Routers) HidePublication(c echo.Context) error {
	const op = "http.routers.HidePublication"

	if err := r.PublicationService.MarkPublicationDeletedLocally(c.Request().Context(), c.Param("id")); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (r *Routers) UnhidePublication(c echo.Context) error {
	const op = "http.routers.UnhidePublication"

	if err := r.PublicationService.RestorePublicationLocally(c.Request().Context(), c.Param("id")); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AddMedia godoc
// @Summary Добавление медиа к публикации
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "ID публикации"
// @Param request body dto.AddMediaRequest true "Медиа"
// @Success 201 {object} response.Response{data=models.Media}
// @Router /api/v1/publications/{id}/media [post]
func (r *Routers) AddMedia(c echo.Context) error {
	const op = "http.routers.AddMedia"

	var req dto.AddMediaRequest
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	media, err := r.PublicationService.AddMedia(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(media))
}

// SetMediaOrder godoc
// @Summary Локальный порядок медиа
// @Tags media
// @Accept json
// @Param id path string true "ID публикации"
// @Param request body dto.SetOrderRequest true "ID медиа по порядку"
// @Success 204
// @Router /api/v1/publications/{id}/media/order [put]
func (r *Routers) SetMediaOrder(c echo.Context) error {
	const op = "http.routers.SetMediaOrder"

	var req dto.SetOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	if err := r.PublicationService.SetOrderLocally(c.Request().Context(), c.Param("id"), req.MediaIDs); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SetCover godoc
// @Summary Локальная обложка публикации
// @Description Пустой media_id снимает закрепление.
// @Tags media
// @Accept json
// @Param id path string true "ID публикации"
// @Param request body dto.SetCoverRequest true "ID медиа"
// @Success 204
// @Router /api/v1/publications/{id}/cover [put]
func (r *Routers) SetCover(c echo.Context) error {
	const op = "http.routers.SetCover"

	var req dto.SetCoverRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.PublicationService.SetCoverLocally(c.Request().Context(), c.Param("id"), req.MediaID); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteMedia godoc
// @Summary Локальное удаление медиа
// @Description Бэкенд не вызывается. cascade помечает публикацию удалённой.
// @Tags media
// @Param media_id path string true "ID медиа"
// @Param cascade query string false "ID публикации для каскада"
// @Success 204
// @Router /api/v1/media/{media_id} [delete]
func (r *Routers) DeleteMedia(c echo.Context) error {
	const op = "http.routers.DeleteMedia"

	err := r.PublicationService.MarkMediaDeletedLocally(c.Request().Context(), c.Param("media_id"), c.QueryParam("cascade"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RestoreMedia godoc
// @Summary Восстановление локально удалённого медиа
// @Tags media
// @Param media_id path string true "ID медиа"
// @Success 204
// @Router /api/v1/media/{media_id}/restore [post]
func (r *Routers) RestoreMedia(c echo.Context) error {
	const op = "http.routers.RestoreMedia"

	if err := r.PublicationService.RestoreMediaLocally(c.Request().Context(), c.Param("media_id")); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SetExtras godoc
// @Summary Локальные поля публикации (категория, stock, доставка, цена)
// @Tags publications
// @Accept json
// @Param id path string true "ID публикации"
// @Param request body models.Extras true "Extras"
// @Success 204
// @Router /api/v1/publications/{id}/extras [put]
func (r *Routers) SetExtras(c echo.Context) error {
	const op = "http.routers.SetExtras"

	var req models.Extras
	if err := bindStrict(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	if err := r.PublicationService.SetExtrasLocally(c.Request().Context(), c.Param("id"), req); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetModeration godoc
// @Summary История модерации
// @Tags publications
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} response.Response{data=[]models.ModerationRecord}
// @Router /api/v1/publications/{id}/moderation [get]
func (r *Routers) GetModeration(c echo.Context) error {
	const op = "http.routers.GetModeration"

	records, err := r.PublicationService.GetModeration(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(records))
}

// GetRejection godoc
// @Summary Причина отклонения
// @Tags publications
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} response.Response{data=dto.RejectionResponse}
// @Router /api/v1/publications/{id}/rejection [get]
func (r *Routers) GetRejection(c echo.Context) error {
	const op = "http.routers.GetRejection"

	resp, err := r.PublicationService.RejectionReason(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(resp))
}
