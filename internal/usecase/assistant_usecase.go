package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/extract"
	"github.com/nguyentranbao-ct/shop-assistant/internal/ingest"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/llm"
	"github.com/nguyentranbao-ct/shop-assistant/internal/repo/woocommerce"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/ctxval"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/util"
)

type ChatResult struct {
	Reply    string                 `json:"reply"`
	Products []models.ProductRecord `json:"products"`
	Status   string                 `json:"status"`
	Error    string                 `json:"error,omitempty"`
}

type AttachResult struct {
	FileName string `json:"file_name"`
	Preview  string `json:"preview"`
	Error    string `json:"error,omitempty"`
}

type ConnectionResult struct {
	SiteURL   string `json:"site_url"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// AssistantUsecase drives one operator session: file context, conversation,
// staged products and the confirmed upload.
type AssistantUsecase interface {
	CreateSession(ctx context.Context) (*models.Session, error)
	GetSession(ctx context.Context, id models.ObjectID) (*models.Session, error)
	DeleteSession(ctx context.Context, id models.ObjectID) error
	SetCredentials(ctx context.Context, id models.ObjectID, creds models.Credentials) error
	CheckConnection(ctx context.Context, id models.ObjectID) (*ConnectionResult, error)
	AttachFile(ctx context.Context, id models.ObjectID, name string, r io.Reader) (*AttachResult, error)
	Chat(ctx context.Context, id models.ObjectID, message string) (*ChatResult, error)
	ConfirmUpload(ctx context.Context, id models.ObjectID, progress ProgressFunc) (*models.UploadResult, error)
	Clear(ctx context.Context, id models.ObjectID) error
}

type assistantUsecase struct {
	store     SessionStore
	gateway   llm.Gateway
	uploader  UploadUsecase
	clients   woocommerce.Factory
	publisher UploadPublisher
	validate  *validator.Validate
	cfg       config.AssistantConfig

	locks [lockStripes]sync.Mutex
}

const lockStripes = 64

func NewAssistantUsecase(
	cfg *config.Config,
	store SessionStore,
	gateway llm.Gateway,
	uploader UploadUsecase,
	clients woocommerce.Factory,
	publisher UploadPublisher,
) AssistantUsecase {
	return &assistantUsecase{
		store:     store,
		gateway:   gateway,
		uploader:  uploader,
		clients:   clients,
		publisher: publisher,
		validate:  validator.New(),
		cfg:       cfg.Assistant,
	}
}

// lock serialises operations on one session. Sessions share a fixed set of
// stripes, so unrelated sessions may occasionally wait on each other.
func (uc *assistantUsecase) lock(id models.ObjectID) func() {
	l := &uc.locks[lockStripe(id)]
	l.Lock()
	return l.Unlock
}

func lockStripe(id models.ObjectID) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32() % lockStripes
}

func (uc *assistantUsecase) CreateSession(ctx context.Context) (*models.Session, error) {
	session := &models.Session{ID: models.NewObjectID()}
	if err := uc.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Infow(ctx, "session created", "session_id", session.ID)
	return session, nil
}

func (uc *assistantUsecase) GetSession(ctx context.Context, id models.ObjectID) (*models.Session, error) {
	return uc.store.Get(ctx, id)
}

func (uc *assistantUsecase) DeleteSession(ctx context.Context, id models.ObjectID) error {
	unlock := uc.lock(id)
	defer unlock()

	if err := uc.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Infow(ctx, "session deleted", "session_id", id)
	return nil
}

func (uc *assistantUsecase) SetCredentials(ctx context.Context, id models.ObjectID, creds models.Credentials) error {
	if err := uc.validate.Struct(creds); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidInput, err)
	}

	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return err
	}
	session.Credentials = &creds
	if err := uc.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	log.Infow(ctx, "credentials set", "session_id", id, "site_url", creds.BaseURL())
	return nil
}

func (uc *assistantUsecase) CheckConnection(ctx context.Context, id models.ObjectID) (*ConnectionResult, error) {
	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Credentials == nil {
		return nil, models.ErrNoCredentials
	}

	client := uc.clients(*session.Credentials)
	ok, err := client.TestConnection(ctx)
	result := &ConnectionResult{SiteURL: client.SiteURL(), Connected: ok}
	if err != nil {
		result.Error = err.Error()
		log.Warnw(ctx, "connection check failed", "session_id", id, "site_url", client.SiteURL(), "error", err)
	}
	return result, nil
}

func (uc *assistantUsecase) AttachFile(ctx context.Context, id models.ObjectID, name string, r io.Reader) (*AttachResult, error) {
	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A file that cannot be read still becomes context: the notice tells the
	// model what went wrong.
	text, parseErr := ingest.ParseOrNotice(name, r)
	session.FileName = name
	session.FileContext = text
	if err := uc.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	ctxval.Annotate(ctx, "file_name", name, "context_chars", len(text))

	result := &AttachResult{
		FileName: name,
		Preview:  ingest.Preview(text, uc.cfg.PreviewCharacters),
	}
	if parseErr != nil {
		result.Error = parseErr.Error()
		log.Warnw(ctx, "file could not be parsed", "session_id", id, "file_name", name, "error", parseErr)
	} else {
		log.Infow(ctx, "file attached", "session_id", id, "file_name", name, "context_chars", len(text))
	}
	return result, nil
}

func (uc *assistantUsecase) Chat(ctx context.Context, id models.ObjectID, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: empty message", models.ErrInvalidInput)
	}

	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	reply, genErr := uc.gateway.Generate(ctx, llm.Request{
		Context: session.FileContext,
		History: session.History,
		Message: message,
	})
	if genErr != nil {
		log.Warnw(ctx, "model reply replaced by error notice", "session_id", id, "error", genErr)
	}

	extracted := extract.Extract(reply)
	text := extracted.Clean()
	if uc.cfg.KeepTrailingText {
		text = extracted.CleanWithSuffix()
	}

	session.Append(models.RoleUser, message)
	session.Append(models.RoleAssistant, text)
	if extracted.Status == extract.Found && len(extracted.Products) > 0 {
		session.Staged = extracted.Products
	}
	if err := uc.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	ctxval.Annotate(ctx, "extraction", extracted.Status.String(), "staged", len(session.Staged))

	result := &ChatResult{
		Reply:    text,
		Products: extracted.Products,
		Status:   extracted.Status.String(),
	}
	if extracted.Err != nil {
		result.Error = extracted.Err.Error()
		log.Warnw(ctx, "product payload rejected", "session_id", id, "error", extracted.Err)
	}
	return result, nil
}

func (uc *assistantUsecase) ConfirmUpload(ctx context.Context, id models.ObjectID, progress ProgressFunc) (*models.UploadResult, error) {
	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Credentials == nil {
		return nil, models.ErrNoCredentials
	}
	if len(session.Staged) == 0 {
		return nil, models.ErrNothingStaged
	}

	// Once started, the batch runs to the end even if the caller goes away;
	// each product call is still bounded by the client timeout.
	ctx = context.WithoutCancel(ctx)

	client := uc.clients(*session.Credentials)
	log.Infow(ctx, "uploading staged products", "session_id", id,
		"products", util.ConvertList(session.Staged, models.ProductRecord.Name))
	result := uc.uploader.Upload(ctx, session.Staged, client, progress)

	// The staged list is spent whatever the outcome.
	session.Staged = nil
	session.Append(models.RoleAssistant, fmt.Sprintf("Upload finished: %d of %d products created.", result.Succeeded, result.Attempted))
	if err := uc.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	ctxval.Annotate(ctx, "attempted", result.Attempted, "succeeded", result.Succeeded)

	event := models.UploadCompletedEvent{
		SessionID:   id.String(),
		SiteURL:     client.SiteURL(),
		Attempted:   result.Attempted,
		Succeeded:   result.Succeeded,
		Outcomes:    result.Outcomes,
		CompletedAt: time.Now(),
	}
	if err := uc.publisher.PublishUploadCompleted(ctx, event); err != nil {
		log.Errorw(ctx, "publish upload event", "session_id", id, "error", err)
	}
	return &result, nil
}

func (uc *assistantUsecase) Clear(ctx context.Context, id models.ObjectID) error {
	unlock := uc.lock(id)
	defer unlock()

	session, err := uc.store.Get(ctx, id)
	if err != nil {
		return err
	}
	session.Clear()
	if err := uc.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
