package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/shop-assistant/internal/server/middleware"
	"github.com/nguyentranbao-ct/shop-assistant/internal/usecase"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/util"
)

type Controller interface {
	Health(c echo.Context) error
	CreateSession(c echo.Context, req struct{}) (*pkgmdw.Response, error)
	GetSession(c echo.Context, req SessionRequest) (*SessionView, error)
	DeleteSession(c echo.Context, req SessionRequest) error
	SetCredentials(c echo.Context, req CredentialsRequest) error
	CheckConnection(c echo.Context, req SessionRequest) (*usecase.ConnectionResult, error)
	AttachFile(c echo.Context) error
	Chat(c echo.Context, req MessageRequest) (*usecase.ChatResult, error)
	ClearMessages(c echo.Context, req SessionRequest) error
	ConfirmUpload(c echo.Context, req SessionRequest) (*models.UploadResult, error)
}

type SessionRequest struct {
	ID string `param:"id" validate:"required"`
}

type MessageRequest struct {
	ID      string `param:"id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type CredentialsRequest struct {
	ID                 string `param:"id" validate:"required"`
	SiteURL            string `json:"site_url" validate:"required,site_url"`
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password"`
	ConsumerKey        string `json:"consumer_key" validate:"required"`
	ConsumerSecret     string `json:"consumer_secret" validate:"required"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
}

// SessionView is a session as the API shows it: secrets masked, file
// context reduced to its name.
type SessionView struct {
	ID          models.ObjectID        `json:"id"`
	FileName    string                 `json:"file_name,omitempty"`
	History     []models.ChatTurn      `json:"history"`
	Staged      []models.ProductRecord `json:"staged"`
	Credentials *models.Credentials    `json:"credentials,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func newSessionView(s *models.Session) *SessionView {
	view := &SessionView{
		ID:        s.ID,
		FileName:  s.FileName,
		History:   s.History,
		Staged:    s.Staged,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Credentials != nil {
		view.Credentials = util.Ptr(s.Credentials.Redacted())
	}
	if view.History == nil {
		view.History = []models.ChatTurn{}
	}
	if view.Staged == nil {
		view.Staged = []models.ProductRecord{}
	}
	return view
}

type controller struct {
	assistant     usecase.AssistantUsecase
	maxUploadSize int64
}

func NewHandler(conf *config.Config, assistant usecase.AssistantUsecase) Controller {
	return &controller{
		assistant:     assistant,
		maxUploadSize: conf.Server.MaxUploadSize,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "shop-assistant",
	})
}

func (h *controller) CreateSession(c echo.Context, _ struct{}) (*pkgmdw.Response, error) {
	session, err := h.assistant.CreateSession(c.Request().Context())
	if err != nil {
		return nil, err
	}
	return pkgmdw.Created(newSessionView(session)), nil
}

func (h *controller) GetSession(c echo.Context, req SessionRequest) (*SessionView, error) {
	session, err := h.assistant.GetSession(c.Request().Context(), models.ObjectID(req.ID))
	if err != nil {
		return nil, err
	}
	return newSessionView(session), nil
}

func (h *controller) DeleteSession(c echo.Context, req SessionRequest) error {
	return h.assistant.DeleteSession(c.Request().Context(), models.ObjectID(req.ID))
}

func (h *controller) SetCredentials(c echo.Context, req CredentialsRequest) error {
	return h.assistant.SetCredentials(c.Request().Context(), models.ObjectID(req.ID), models.Credentials{
		SiteURL:            req.SiteURL,
		Username:           req.Username,
		Password:           req.Password,
		ConsumerKey:        req.ConsumerKey,
		ConsumerSecret:     req.ConsumerSecret,
		InsecureSkipVerify: req.InsecureSkipVerify,
	})
}

func (h *controller) CheckConnection(c echo.Context, req SessionRequest) (*usecase.ConnectionResult, error) {
	return h.assistant.CheckConnection(c.Request().Context(), models.ObjectID(req.ID))
}

func (h *controller) AttachFile(c echo.Context) error {
	id := c.Param("id")
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing multipart field \"file\"")
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		return pkgmdw.NewResponseError(http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("file is %d bytes, limit is %d", file.Size, h.maxUploadSize))
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	result, err := h.assistant.AttachFile(c.Request().Context(), models.ObjectID(id), file.Filename, src)
	if err != nil {
		return err
	}
	resp := pkgmdw.OK(result)
	return c.JSON(resp.Status, resp)
}

func (h *controller) Chat(c echo.Context, req MessageRequest) (*usecase.ChatResult, error) {
	return h.assistant.Chat(c.Request().Context(), models.ObjectID(req.ID), req.Message)
}

func (h *controller) ClearMessages(c echo.Context, req SessionRequest) error {
	return h.assistant.Clear(c.Request().Context(), models.ObjectID(req.ID))
}

func (h *controller) ConfirmUpload(c echo.Context, req SessionRequest) (*models.UploadResult, error) {
	ctx := c.Request().Context()
	return h.assistant.ConfirmUpload(ctx, models.ObjectID(req.ID), func(done, total int) {
		log.Debugw(ctx, "upload progress", "session_id", req.ID, "done", done, "total", total)
	})
}
