package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"marketplace_admin/internal/domain/models"
	"marketplace_admin/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

func readUpload(fh *multipart.FileHeader) (models.UploadFile, error) {
	src, err := fh.Open()
	if err != nil {
		return models.UploadFile{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.UploadFile{}, err
	}

	return models.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}

// UploadImage godoc
// @Summary Загрузка одного изображения
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение"
// @Success 201 {object} response.Response{data=models.Asset}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/uploads/image [post]
func (r *Routers) UploadImage(c echo.Context) error {
	const op = "http.routers.UploadImage"

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("file is required"))
	}

	file, err := readUpload(fh)
	if err != nil {
		return r.fail(c, op, fmt.Errorf("%s: %w", op, err))
	}

	asset, err := r.UploadService.UploadOne(c.Request().Context(), file)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(asset))
}

// UploadImages godoc
// @Summary Загрузка нескольких изображений
// @Description Ответ сохраняет порядок файлов.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Изображения"
// @Success 201 {object} response.Response{data=[]models.Asset}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/uploads/images [post]
func (r *Routers) UploadImages(c echo.Context) error {
	const op = "http.routers.UploadImages"

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	var headers []*multipart.FileHeader
	if form != nil {
		headers = form.File["files"]
	}

	files := make([]models.UploadFile, 0, len(headers))
	for _, fh := range headers {
		file, err := readUpload(fh)
		if err != nil {
			return r.fail(c, op, fmt.Errorf("%s: %w", op, err))
		}
		files = append(files, file)
	}

	assets, err := r.UploadService.UploadMany(c.Request().Context(), files)
	if err != nil {
		return r.fail(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(assets))
}

// DeleteUpload godoc
// @Summary Удаление загруженного изображения
// @Tags uploads
// @Param public_id path string true "publicId, закодированный как один сегмент"
// @Success 204
// @Router /api/v1/uploads/{public_id} [delete]
func (r *Routers) DeleteUpload(c echo.Context) error {
	const op = "http.routers.DeleteUpload"

	publicID, err := url.PathUnescape(c.Param("public_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("invalid public_id"))
	}

	if err := r.UploadService.DeleteAsset(c.Request().Context(), publicID); err != nil {
		return r.fail(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}
