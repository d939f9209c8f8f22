package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/soremed/portal/internal/api/view"
	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

const maxNewsImageSize = 5 << 20

var newsImageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// NewsHandler serves news to every layout and news editing to admins.
type NewsHandler struct {
	news    ports.NewsAPI
	catalog ports.CatalogAPI
}

func NewNewsHandler(news ports.NewsAPI, catalog ports.CatalogAPI) *NewsHandler {
	return &NewsHandler{news: news, catalog: catalog}
}

type newsRequest struct {
	Title       string `json:"title"       form:"title"       validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
	Category    string `json:"category"    form:"category"`
	ImageURL    string `json:"imageUrl"    form:"imageUrl"`
	Date        string `json:"date"        form:"date"`
}

func (r newsRequest) toDomain() domain.News {
	return domain.News{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Date:        r.Date,
	}
}

type newsPageData struct {
	News  []domain.News           `json:"news"`
	Stats *domain.MedicationStats `json:"stats"`
}

// Client handles GET /news: the news feed and the catalog counters, fetched
// concurrently.
//
// @Summary      News feed
// @Tags         client
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /news [get]
func (h *NewsHandler) Client(c echo.Context) error {
	var data newsPageData
	g, ctx := errgroup.WithContext(c.Request().Context())

	g.Go(func() error {
		news, err := h.news.ListNews(ctx)
		data.News = news
		return err
	})
	g.Go(func() error {
		stats, err := h.catalog.MedicationStats(ctx)
		data.Stats = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return render(c, view.LayoutClient, "News", data)
}

// AdminList handles GET /admin/news.
//
// @Summary      Back-office news
// @Tags         admin
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /admin/news [get]
func (h *NewsHandler) AdminList(c echo.Context) error {
	news, err := h.news.ListNews(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, view.LayoutAdmin, "News", newsPageData{News: news})
}

// AchatList handles GET /achat/news.
//
// @Summary      Purchasing news
// @Tags         achat
// @Produce      json
// @Success      200  {object}  view.Page
// @Router       /achat/news [get]
func (h *NewsHandler) AchatList(c echo.Context) error {
	news, err := h.news.ListNews(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, view.LayoutServiceAchat, "News", newsPageData{News: news})
}

// Create handles POST /admin/news. A multipart body may carry an "image" file,
// which is forwarded to the backend as multipart; a JSON body is forwarded as JSON.
//
// @Summary      Publish news
// @Tags         admin
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        body   body      newsRequest  false  "News item (JSON)"
// @Param        image  formData  file         false  "Illustration"
// @Success      201    {object}  domain.News
// @Failure      422    {object}  errorResponse
// @Router       /admin/news [post]
func (h *NewsHandler) Create(c echo.Context) error {
	var req newsRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	image, closeImage, err := newsImage(c)
	if err != nil {
		return err
	}
	defer closeImage()

	n, err := h.news.CreateNews(c.Request().Context(), req.toDomain(), image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// Update handles PUT /admin/news/:id.
//
// @Summary      Edit news
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "News id"
// @Param        body  body      newsRequest  true  "News item"
// @Success      200   {object}  domain.News
// @Router       /admin/news/{id} [put]
func (h *NewsHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req newsRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	n, err := h.news.UpdateNews(c.Request().Context(), id, req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

// Delete handles DELETE /admin/news/:id.
//
// @Summary      Delete news
// @Tags         admin
// @Param        id  path  int  true  "News id"
// @Success      204
// @Router       /admin/news/{id} [delete]
func (h *NewsHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.news.DeleteNews(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// newsImage returns the uploaded image, if any, and a func releasing it.
func newsImage(c echo.Context) (*ports.NewsImage, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
	}
	if fh.Size > maxNewsImageSize {
		return nil, noop, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds 5MB")
	}
	if !newsImageExts[strings.ToLower(filepath.Ext(fh.Filename))] {
		return nil, noop, echo.NewHTTPError(http.StatusUnprocessableEntity, "image must be png, jpg, gif or webp")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
	}
	return &ports.NewsImage{Filename: filepath.Base(fh.Filename), Content: f}, func() { _ = f.Close() }, nil
}
