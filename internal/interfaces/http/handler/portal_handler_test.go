package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	deliveryapp "github.com/clientdesk/backend/internal/application/delivery"
	projectapp "github.com/clientdesk/backend/internal/application/project"
	"github.com/clientdesk/backend/internal/domain/delivery"
	"github.com/clientdesk/backend/internal/domain/project"
	"github.com/clientdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repository fakes shared by the portal and deliverable handler
// tests. They mirror the persistence contracts without a database.

type fakeProjectRepo struct {
	projects map[uuid.UUID]*project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*project.Project)}
}

func (r *fakeProjectRepo) add(p *project.Project) { r.projects[p.ID] = p }

func (r *fakeProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return r.projects[id], nil
}

func (r *fakeProjectRepo) FindByPublicID(ctx context.Context, publicID string) (*project.Project, error) {
	for _, p := range r.projects {
		if p.PublicID == publicID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) FindByCorrelationToken(ctx context.Context, token string) (*project.Project, error) {
	for _, p := range r.projects {
		if token != "" && p.CorrelationToken == token {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProjectRepo) Save(ctx context.Context, p *project.Project) error {
	r.projects[p.ID] = p
	return nil
}

func (r *fakeProjectRepo) SaveWithLock(ctx context.Context, p *project.Project) error {
	return r.Save(ctx, p)
}

type fakeDeliverableRepo struct {
	deliverables map[uuid.UUID]*delivery.Deliverable
}

func newFakeDeliverableRepo() *fakeDeliverableRepo {
	return &fakeDeliverableRepo{deliverables: make(map[uuid.UUID]*delivery.Deliverable)}
}

func (r *fakeDeliverableRepo) add(d *delivery.Deliverable) { r.deliverables[d.ID] = d }

func (r *fakeDeliverableRepo) FindByID(ctx context.Context, id uuid.UUID) (*delivery.Deliverable, error) {
	return r.deliverables[id], nil
}

func (r *fakeDeliverableRepo) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]delivery.Deliverable, error) {
	var out []delivery.Deliverable
	for _, d := range r.deliverables {
		if d.ProjectID == projectID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDeliverableRepo) FindLatestByProjectID(ctx context.Context, projectID uuid.UUID) (*delivery.Deliverable, error) {
	var latest *delivery.Deliverable
	for _, d := range r.deliverables {
		if d.ProjectID == projectID && (latest == nil || d.Version > latest.Version) {
			latest = d
		}
	}
	return latest, nil
}

func (r *fakeDeliverableRepo) NextVersion(ctx context.Context, projectID uuid.UUID) (int, error) {
	max := 0
	for _, d := range r.deliverables {
		if d.ProjectID == projectID && d.Version > max {
			max = d.Version
		}
	}
	return max + 1, nil
}

func (r *fakeDeliverableRepo) Save(ctx context.Context, d *delivery.Deliverable) error {
	r.deliverables[d.ID] = d
	return nil
}

type fakeFeedbackRepo struct {
	feedbacks []*delivery.Feedback
}

func (r *fakeFeedbackRepo) FindByDeliverableID(ctx context.Context, deliverableID uuid.UUID) ([]delivery.Feedback, error) {
	var out []delivery.Feedback
	for _, f := range r.feedbacks {
		if f.DeliverableID == deliverableID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]delivery.Feedback, error) {
	var out []delivery.Feedback
	for _, f := range r.feedbacks {
		if f.ProjectID == projectID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) Save(ctx context.Context, f *delivery.Feedback) error {
	r.feedbacks = append(r.feedbacks, f)
	return nil
}

type fakeSignoffRepo struct {
	signoffs []*delivery.Signoff
}

func (r *fakeSignoffRepo) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]delivery.Signoff, error) {
	var out []delivery.Signoff
	for _, s := range r.signoffs {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSignoffRepo) Save(ctx context.Context, s *delivery.Signoff) error {
	r.signoffs = append(r.signoffs, s)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	s.objects[storageKey] = data
	return nil
}

func (s *fakeStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://storage.test/" + storageKey, time.Now().Add(expiresIn), nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, storageKey string) error {
	delete(s.objects, storageKey)
	return nil
}

func (s *fakeStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	_, ok := s.objects[storageKey]
	return ok, nil
}

type fakeWatermarker struct{}

func (w *fakeWatermarker) Apply(ctx context.Context, original []byte, mimeType string) ([]byte, error) {
	return append([]byte("wm:"), original...), nil
}

type handlerTestEnv struct {
	router       *gin.Engine
	projects     *fakeProjectRepo
	deliverables *fakeDeliverableRepo
	feedbacks    *fakeFeedbackRepo
	signoffs     *fakeSignoffRepo
	storage      *fakeStorage
}

// passthroughScope runs units of work directly against the env fakes
type passthroughScope struct {
	env *handlerTestEnv
}

func (s *passthroughScope) Execute(ctx context.Context, fn func(repos deliveryapp.TransactionalRepositories) error) error {
	return fn(s)
}

func (s *passthroughScope) Projects() project.Repository                 { return s.env.projects }
func (s *passthroughScope) Deliverables() delivery.DeliverableRepository { return s.env.deliverables }
func (s *passthroughScope) Feedbacks() delivery.FeedbackRepository       { return s.env.feedbacks }
func (s *passthroughScope) Signoffs() delivery.SignoffRepository         { return s.env.signoffs }

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	env := &handlerTestEnv{
		projects:     newFakeProjectRepo(),
		deliverables: newFakeDeliverableRepo(),
		feedbacks:    &fakeFeedbackRepo{},
		signoffs:     &fakeSignoffRepo{},
		storage:      newFakeStorage(),
	}

	deliveryService := deliveryapp.NewDeliveryService(deliveryapp.DeliveryServiceConfig{
		ProjectRepo:     env.projects,
		DeliverableRepo: env.deliverables,
		FeedbackRepo:    env.feedbacks,
		SignoffRepo:     env.signoffs,
		Scope:           &passthroughScope{env: env},
		Storage:         env.storage,
		Watermarker:     &fakeWatermarker{},
	})
	projectService := projectapp.NewProjectService(projectapp.ProjectServiceConfig{
		ProjectRepo:     env.projects,
		DeliverableRepo: env.deliverables,
		FeedbackRepo:    env.feedbacks,
	})

	env.router = gin.New()
	api := env.router.Group("/api/v1")
	NewPortalHandler(projectService, deliveryService).RegisterRoutes(api)
	NewDeliverableHandler(deliveryService, 0).RegisterRoutes(api)
	return env
}

// newTestProject creates a project and walks it into the requested stage
func (env *handlerTestEnv) newTestProject(t *testing.T, publicID string, paymentRequired bool) *project.Project {
	t.Helper()
	p, err := project.NewProject(publicID, "Test project", "Jane Cooper", "jane@example.com", paymentRequired)
	require.NoError(t, err)
	env.projects.add(p)
	return p
}

// newTestDeliverable stores a deliverable version for a project
func (env *handlerTestEnv) newTestDeliverable(t *testing.T, p *project.Project, version int) *delivery.Deliverable {
	t.Helper()
	d, err := delivery.NewDeliverable(p.ID, version, "art.png", "image/png", 42, "clean-key")
	require.NoError(t, err)
	d.SetPreview("preview-key", true)
	env.deliverables.add(d)
	return d
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPortalHandler_GetProjectState(t *testing.T) {
	t.Run("unknown public ID returns 404", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		w := doJSON(t, env.router, "GET", "/api/v1/portal/projects/nope", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "PROJECT_NOT_FOUND", resp.Error.Code)
	})

	t.Run("returns project with latest deliverable and feedback", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		env.newTestDeliverable(t, p, 1)
		d2 := env.newTestDeliverable(t, p, 2)

		fb, err := delivery.NewFeedback(d2.ID, p.ID, delivery.FeedbackApprove, "", "Jane", "jane@example.com")
		require.NoError(t, err)
		require.NoError(t, env.feedbacks.Save(context.Background(), fb))

		w := doJSON(t, env.router, "GET", "/api/v1/portal/projects/pub-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                `json:"success"`
			Data    PortalStateResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "pub-1", resp.Data.Project.PublicID)
		require.NotNil(t, resp.Data.LatestDeliverable)
		assert.Equal(t, 2, resp.Data.LatestDeliverable.Version)
		require.Len(t, resp.Data.Feedback, 1)
		assert.Equal(t, "APPROVE", resp.Data.Feedback[0].Type)
	})
}

func TestPortalHandler_Download(t *testing.T) {
	t.Run("unpaid project is denied with 402", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "GET", "/api/v1/portal/deliverables/"+d.ID.String()+"/download", nil)

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "PAYMENT_REQUIRED", resp.Error.Code)
	})

	t.Run("refunded project is denied with 422", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		require.NoError(t, p.MarkPaid(project.PaymentProviderStripe))
		require.NoError(t, p.MarkRefunded())
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "GET", "/api/v1/portal/deliverables/"+d.ID.String()+"/download", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "PROJECT_REFUNDED", resp.Error.Code)
	})

	t.Run("paid and released serves the clean rendition", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		require.NoError(t, p.MarkPaid(project.PaymentProviderStripe))
		require.NoError(t, p.StartDelivery())
		require.NoError(t, p.EnterReview())
		require.NoError(t, p.Release())
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "GET", "/api/v1/portal/deliverables/"+d.ID.String()+"/download", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data AccessGrantResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CLEAN", resp.Data.Variant)
		assert.False(t, resp.Data.Draft)
		assert.Contains(t, resp.Data.URL, "clean-key")
	})

	t.Run("paid but not released serves a watermarked draft", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		require.NoError(t, p.MarkPaid(project.PaymentProviderStripe))
		require.NoError(t, p.StartDelivery())
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "GET", "/api/v1/portal/deliverables/"+d.ID.String()+"/download", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data AccessGrantResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "WATERMARKED", resp.Data.Variant)
		assert.True(t, resp.Data.Draft)
		assert.Contains(t, resp.Data.URL, "preview-key")
	})

	t.Run("unknown deliverable returns 404", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		w := doJSON(t, env.router, "GET", "/api/v1/portal/deliverables/"+uuid.NewString()+"/download", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "DELIVERABLE_NOT_FOUND", resp.Error.Code)
	})
}

func TestPortalHandler_Preview(t *testing.T) {
	t.Run("unpaid project still gets the watermarked view", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "GET", "/api/v1/portal/deliverables/"+d.ID.String()+"/preview", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data AccessGrantResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "WATERMARKED", resp.Data.Variant)
		assert.True(t, resp.Data.Draft)
	})
}

func TestPortalHandler_SubmitFeedback(t *testing.T) {
	t.Run("persists approval feedback", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "POST", "/api/v1/portal/deliverables/"+d.ID.String()+"/feedback", SubmitFeedbackRequest{
			Type:           "APPROVE",
			SubmitterName:  "Jane Cooper",
			SubmitterEmail: "jane@example.com",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, env.feedbacks.feedbacks, 1)
	})

	t.Run("revision without notes is refused but nothing is lost", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "POST", "/api/v1/portal/deliverables/"+d.ID.String()+"/feedback", SubmitFeedbackRequest{
			Type:           "NEEDS_REVISION",
			SubmitterName:  "Jane Cooper",
			SubmitterEmail: "jane@example.com",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "NOTES_REQUIRED", resp.Error.Code)
		assert.Empty(t, env.feedbacks.feedbacks)
	})

	t.Run("unknown type fails request validation", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		d := env.newTestDeliverable(t, p, 1)

		w := doJSON(t, env.router, "POST", "/api/v1/portal/deliverables/"+d.ID.String()+"/feedback", map[string]string{
			"type":            "MEH",
			"submitter_name":  "Jane Cooper",
			"submitter_email": "jane@example.com",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPortalHandler_SignOff(t *testing.T) {
	signOffBody := SignOffRequest{SignerName: "Jane Cooper", SignerEmail: "jane@example.com"}

	approve := func(t *testing.T, env *handlerTestEnv, p *project.Project, d *delivery.Deliverable) {
		fb, err := delivery.NewFeedback(d.ID, p.ID, delivery.FeedbackApprove, "", "Jane", "jane@example.com")
		require.NoError(t, err)
		require.NoError(t, env.feedbacks.Save(context.Background(), fb))
	}

	t.Run("without approval feedback is refused", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		require.NoError(t, p.MarkPaid(project.PaymentProviderStripe))
		require.NoError(t, p.StartDelivery())
		require.NoError(t, p.EnterReview())
		d := env.newTestDeliverable(t, p, 1)
		require.NoError(t, d.MarkReady())

		w := doJSON(t, env.router, "POST", "/api/v1/portal/deliverables/"+d.ID.String()+"/signoff", signOffBody)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "APPROVAL_REQUIRED", resp.Error.Code)
		assert.Empty(t, env.signoffs.signoffs)
	})

	t.Run("unpaid project is refused with 402", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		require.NoError(t, p.StartDelivery())
		require.NoError(t, p.EnterReview())
		d := env.newTestDeliverable(t, p, 1)
		require.NoError(t, d.MarkReady())
		approve(t, env, p, d)

		w := doJSON(t, env.router, "POST", "/api/v1/portal/deliverables/"+d.ID.String()+"/signoff", signOffBody)

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "PAYMENT_REQUIRED", resp.Error.Code)
		// The approval feedback persists even though release was refused
		assert.Len(t, env.feedbacks.feedbacks, 1)
		assert.Empty(t, env.signoffs.signoffs)
	})

	t.Run("approved and paid releases the project", func(t *testing.T) {
		env := newHandlerTestEnv(t)
		p := env.newTestProject(t, "pub-1", true)
		require.NoError(t, p.MarkPaid(project.PaymentProviderStripe))
		require.NoError(t, p.StartDelivery())
		require.NoError(t, p.EnterReview())
		d := env.newTestDeliverable(t, p, 1)
		require.NoError(t, d.MarkReady())
		approve(t, env, p, d)

		w := doJSON(t, env.router, "POST", "/api/v1/portal/deliverables/"+d.ID.String()+"/signoff", signOffBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, project.StageReleased, p.PortalStage)
		assert.Equal(t, delivery.DeliverableStateFinal, d.State)
		require.Len(t, env.signoffs.signoffs, 1)

		var resp struct {
			Data SignoffResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "jane@example.com", resp.Data.SignerEmail)
	})
}
