package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/TemplateForge/app/models"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/catalog"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/copies"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/database"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/middleware"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/storage"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/upload"
	"github.com/ManuelReschke/TemplateForge/internal/pkg/usercontext"
)

// testUserHeader selects the logged-in user of a test request
const testUserHeader = "X-Test-User"

var (
	planPDF  = []byte("%PDF-1.7\n1 0 obj\n<< /Title (Business Plan) >>\nendobj\n%%EOF\n")
	editPDF  = []byte("%PDF-1.7\nflattened by the editor\n%%EOF\n")
	sheetXLS = append([]byte("PK\x03\x04"), []byte("xl/workbook.xml")...)
)

type testEnv struct {
	services *Services
	store    *storage.LocalStore
	app      *fiber.App
	admin    *models.User
	alice    *models.User
	bob      *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{
		services: NewServices(db, store, nil, ""),
		store:    store,
	}

	ctx := context.Background()
	env.admin = &models.User{Email: "admin@example.com", Provider: "google", ProviderID: "admin", Role: models.ROLE_SUPER_ADMIN}
	env.alice = &models.User{Email: "alice@example.com", Provider: "google", ProviderID: "alice"}
	env.bob = &models.User{Email: "bob@example.com", Provider: "github", ProviderID: "bob"}
	for _, u := range []*models.User{env.admin, env.alice, env.bob} {
		require.NoError(t, env.services.Repos.User.Create(ctx, u))
	}

	env.app = fiber.New(fiber.Config{
		Views: html.New(filepath.Join("..", "..", "views"), ".html"),
	})
	env.app.Use(func(c *fiber.Ctx) error {
		var user *models.User
		if id := c.Get(testUserHeader); id != "" {
			u, err := env.services.Repos.User.GetByID(c.UserContext(), id)
			if err != nil {
				return err
			}
			user = u
		}
		usercontext.Set(c, user)
		return c.Next()
	})
	env.registerRoutes()
	return env
}

func (e *testEnv) registerRoutes() {
	auth := NewAuthController(e.services)
	tpl := NewTemplateController(e.services)
	cp := NewCopyController(e.services)
	pay := NewPaymentController(e.services)
	saved := NewSavedTemplateController(e.services)
	adm := NewAdminController(e.services)
	requireAuth := middleware.RequireAPISessionAuth

	api := e.app.Group("/api")
	api.Get("/auth/login/success", auth.HandleLoginSuccess)
	api.Get("/auth/login/failed", auth.HandleLoginFailed)
	api.Get("/auth/check-premium", requireAuth, auth.HandleCheckPremium)

	api.Get("/templates", tpl.HandleList)
	api.Get("/templates/saved", requireAuth, saved.HandleList)
	api.Get("/templates/:id", tpl.HandleGet)
	api.Get("/templates/:id/download", tpl.HandleDownload)
	api.Get("/templates/:id/preview", tpl.HandlePreview)
	api.Post("/templates/:id/copy", requireAuth, cp.HandleEnsure)
	api.Post("/templates/:id/save", requireAuth, saved.HandleSave)
	api.Delete("/templates/:id/save", requireAuth, saved.HandleUnsave)
	api.Get("/templates/:id/saved", requireAuth, saved.HandleStatus)

	api.Get("/copies", requireAuth, cp.HandleList)
	api.Get("/copies/:id", requireAuth, cp.HandleGet)
	api.Put("/copies/:id", requireAuth, cp.HandleReplaceAsset)
	api.Delete("/copies/:id", requireAuth, cp.HandleDelete)
	api.Put("/copies/:id/content", requireAuth, cp.HandleUpdateContent)
	api.Get("/copies/:id/download", requireAuth, cp.HandleDownload)

	api.Get("/payment/plans", pay.HandlePlans)
	api.Post("/payment/subscribe", requireAuth, pay.HandleSubscribe)
	api.Post("/payment/cancel", requireAuth, pay.HandleCancel)
	api.Get("/payment/status", requireAuth, pay.HandleStatus)

	admin := api.Group("/admin", middleware.RequireSuperAdmin)
	admin.Get("/dashboard", adm.HandleDashboard)
	admin.Post("/templates", adm.HandleTemplateCreate)
	admin.Put("/templates/:id", adm.HandleTemplateUpdate)
	admin.Delete("/templates/:id", adm.HandleTemplateDelete)
	admin.Get("/users", adm.HandleUsers)
	admin.Put("/users/:id", adm.HandleUserUpdate)
}

func (e *testEnv) do(t *testing.T, req *http.Request, user *models.User) *http.Response {
	t.Helper()
	if user != nil {
		req.Header.Set(testUserHeader, user.ID)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string, user *models.User) *http.Response {
	return e.do(t, httptest.NewRequest(fiber.MethodGet, path, nil), user)
}

func (e *testEnv) sendJSON(t *testing.T, method, path string, body interface{}, user *models.User) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return e.do(t, req, user)
}

func (e *testEnv) sendMultipart(t *testing.T, method, path string, fields map[string]string, fileName string, content []byte, user *models.User) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.do(t, req, user)
}

// seedTemplate adds a catalog entry without going through HTTP
func (e *testEnv) seedTemplate(t *testing.T, title, fileName string, body []byte, premium bool) *models.Template {
	t.Helper()
	mime, err := upload.ValidateDocumentBySniff(fileName, body)
	require.NoError(t, err)
	tpl, err := e.services.Catalog.Create(context.Background(), e.admin, catalog.TemplateInput{
		Title:        title,
		Description:  title + " description",
		Category:     "general",
		MainCategory: models.MainCategoryBusiness,
		IsPremium:    premium,
	}, &upload.File{Reader: bytes.NewReader(body), Size: int64(len(body)), FileName: fileName, ContentType: mime})
	require.NoError(t, err)
	return tpl
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func decodeData(t *testing.T, resp *http.Response, dst interface{}) envelope {
	t.Helper()
	env := decode(t, resp)
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

func (e *testEnv) downloads(t *testing.T, id string) int64 {
	t.Helper()
	tpl, err := e.services.Repos.Template.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tpl.Downloads
}

func TestPremiumTemplateDownload(t *testing.T) {
	e := newTestEnv(t)

	resp := e.sendMultipart(t, fiber.MethodPost, "/api/admin/templates", map[string]string{
		"title":        "Business Plan",
		"description":  "A plan for a new business",
		"category":     "planning",
		"mainCategory": models.MainCategoryBusiness,
		"isPremium":    "true",
	}, "business-plan.pdf", planPDF, e.admin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var tpl models.Template
	decodeData(t, resp, &tpl)
	require.NotEmpty(t, tpl.ID)
	assert.True(t, tpl.IsPremium)
	path := "/api/templates/" + tpl.ID + "/download"

	resp = e.get(t, path, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "login_required", decode(t, resp).Error)

	resp = e.get(t, path, e.bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "premium_required", decode(t, resp).Error)
	assert.EqualValues(t, 0, e.downloads(t, tpl.ID))

	resp = e.sendJSON(t, fiber.MethodPost, "/api/payment/subscribe", fiber.Map{"planType": "monthly"}, e.bob)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.get(t, path, e.bob)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "business-plan.pdf")
	assert.Equal(t, planPDF, readBody(t, resp))
	assert.EqualValues(t, 1, e.downloads(t, tpl.ID))
}

func TestFreeTemplateDownloadIsAnonymous(t *testing.T) {
	e := newTestEnv(t)
	tpl := e.seedTemplate(t, "Invoice", "invoice.pdf", planPDF, false)

	resp := e.get(t, "/api/templates/"+tpl.ID+"/download", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, planPDF, readBody(t, resp))
	assert.EqualValues(t, 1, e.downloads(t, tpl.ID))

	resp = e.get(t, "/api/templates/missing/download", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTemplateMetadataIsPublic(t *testing.T) {
	e := newTestEnv(t)
	premium := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, true)
	e.seedTemplate(t, "Budget Sheet", "budget.xlsx", sheetXLS, false)

	resp := e.get(t, "/api/templates/"+premium.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got models.Template
	decodeData(t, resp, &got)
	assert.Equal(t, "Business Plan", got.Title)

	resp = e.get(t, "/api/templates?search=budget", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []models.Template
	decodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Budget Sheet", list[0].Title)

	resp = e.get(t, "/api/templates?mainCategory=resume", nil)
	decodeData(t, resp, &list)
	assert.Empty(t, list)
}

func TestTemplatePreview(t *testing.T) {
	e := newTestEnv(t)
	pdf := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, false)
	sheet := e.seedTemplate(t, "Budget Sheet", "budget.xlsx", sheetXLS, false)
	locked := e.seedTemplate(t, "Pitch Deck", "deck.pdf", planPDF, true)

	resp := e.get(t, "/api/templates/"+pdf.ID+"/preview", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "inline")
	assert.Equal(t, planPDF, readBody(t, resp))

	resp = e.get(t, "/api/templates/"+sheet.ID+"/preview", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	page := string(readBody(t, resp))
	assert.Contains(t, page, "Budget Sheet")
	assert.Contains(t, page, "XLSX")
	assert.Contains(t, page, "/api/templates/"+sheet.ID+"/download")

	resp = e.get(t, "/api/templates/"+locked.ID+"/preview", e.alice)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// previews never count as downloads
	assert.EqualValues(t, 0, e.downloads(t, pdf.ID))
	assert.EqualValues(t, 0, e.downloads(t, sheet.ID))
}

func TestCopyLifecycle(t *testing.T) {
	e := newTestEnv(t)
	tpl := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, false)

	resp := e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/"+tpl.ID+"/copy", nil), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/"+tpl.ID+"/copy", nil), e.alice)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var cp models.TemplateCopy
	decodeData(t, resp, &cp)
	require.NotEmpty(t, cp.ID)
	require.NotNil(t, cp.OriginalTemplateID)
	assert.Equal(t, tpl.ID, *cp.OriginalTemplateID)
	assert.Equal(t, e.alice.ID, cp.UserID)

	// a copy id returns that copy
	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/"+cp.ID+"/copy", nil), e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var same models.TemplateCopy
	decodeData(t, resp, &same)
	assert.Equal(t, cp.ID, same.ID)

	// a template id forks again
	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/"+tpl.ID+"/copy", nil), e.alice)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var second models.TemplateCopy
	decodeData(t, resp, &second)
	assert.NotEqual(t, cp.ID, second.ID)

	resp = e.get(t, "/api/copies", e.alice)
	var mine []models.TemplateCopy
	decodeData(t, resp, &mine)
	assert.Len(t, mine, 2)

	resp = e.sendJSON(t, fiber.MethodPut, "/api/copies/"+cp.ID+"/content", fiber.Map{
		"content": fiber.Map{"objects": []string{"textbox"}},
		"title":   "My Business Plan",
	}, e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var edited models.TemplateCopy
	decodeData(t, resp, &edited)
	assert.Equal(t, "My Business Plan", edited.Title)
	require.NotNil(t, edited.Content)
	assert.JSONEq(t, `{"objects":["textbox"]}`, *edited.Content)

	resp = e.sendJSON(t, fiber.MethodPut, "/api/copies/"+cp.ID+"/content", fiber.Map{"title": "stolen"}, e.bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "not_owner", decode(t, resp).Error)

	resp = e.get(t, "/api/copies/"+cp.ID, e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "copy", decode(t, resp).Kind)

	resp = e.get(t, "/api/copies/"+tpl.ID, e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "original", decode(t, resp).Kind)

	resp = e.get(t, "/api/copies/"+cp.ID+"/download", e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, planPDF, readBody(t, resp))

	resp = e.get(t, "/api/copies/"+cp.ID+"/download", e.bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, httptest.NewRequest(fiber.MethodDelete, "/api/copies/"+cp.ID, nil), e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.get(t, "/api/copies/"+cp.ID, e.alice)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// the original is untouched
	after, err := e.services.Repos.Template.GetByID(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.FilePath, after.FilePath)
	assert.EqualValues(t, 0, after.Downloads)
}

func TestCopyOfPremiumTemplateRequiresPremium(t *testing.T) {
	e := newTestEnv(t)
	tpl := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, true)

	resp := e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/"+tpl.ID+"/copy", nil), e.bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/"+tpl.ID+"/copy", nil), e.admin)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestReplaceCopyAsset(t *testing.T) {
	e := newTestEnv(t)
	tpl := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, false)
	cp, _, err := e.services.Copies.EnsureCopy(context.Background(), e.alice, tpl.ID)
	require.NoError(t, err)
	content := `{"objects":[]}`
	_, err = e.services.Copies.UpdateContent(context.Background(), e.alice, cp.ID, copies.ContentUpdate{Content: &content})
	require.NoError(t, err)

	resp := e.sendMultipart(t, fiber.MethodPut, "/api/copies/"+cp.ID, nil, "plan-edited.pdf", editPDF, e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var replaced models.TemplateCopy
	decodeData(t, resp, &replaced)
	assert.Equal(t, "plan-edited.pdf", replaced.FileName)
	require.NotNil(t, replaced.Content)
	assert.Equal(t, content, *replaced.Content)

	resp = e.get(t, "/api/copies/"+cp.ID+"/download", e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, editPDF, readBody(t, resp))

	resp = e.sendMultipart(t, fiber.MethodPut, "/api/copies/"+cp.ID, nil, "evil.html", []byte("<html><script>alert(1)</script></html>"), e.alice)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = e.sendMultipart(t, fiber.MethodPut, "/api/copies/"+cp.ID, nil, "plan-edited.pdf", editPDF, e.bob)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubscriptionEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/api/payment/plans", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var plans []map[string]interface{}
	decodeData(t, resp, &plans)
	assert.Len(t, plans, 3)

	resp = e.get(t, "/api/payment/status", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.sendJSON(t, fiber.MethodPost, "/api/payment/subscribe", fiber.Map{"planType": "weekly"}, e.alice)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_plan", decode(t, resp).Error)

	resp = e.get(t, "/api/auth/check-premium", e.alice)
	assert.JSONEq(t, `{"isPremium":false}`, string(readBody(t, resp)))

	resp = e.sendJSON(t, fiber.MethodPost, "/api/payment/subscribe", fiber.Map{"planType": "yearly"}, e.alice)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var sub models.Subscription
	decodeData(t, resp, &sub)
	assert.Equal(t, models.PlanYearly, sub.PlanType)
	assert.True(t, strings.HasPrefix(sub.PaymentID, "sim_"))

	resp = e.get(t, "/api/payment/status", e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status struct {
		IsSubscribed bool                 `json:"isSubscribed"`
		Subscription *models.Subscription `json:"subscription"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &status))
	assert.True(t, status.IsSubscribed)
	require.NotNil(t, status.Subscription)
	assert.Equal(t, sub.ID, status.Subscription.ID)

	resp = e.get(t, "/api/auth/check-premium", e.alice)
	assert.JSONEq(t, `{"isPremium":true}`, string(readBody(t, resp)))

	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/payment/cancel", nil), e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.get(t, "/api/payment/status", e.alice)
	require.NoError(t, json.Unmarshal(readBody(t, resp), &status))
	assert.False(t, status.IsSubscribed)

	resp = e.get(t, "/api/auth/check-premium", e.alice)
	assert.JSONEq(t, `{"isPremium":false}`, string(readBody(t, resp)))
}

func TestSavedTemplates(t *testing.T) {
	e := newTestEnv(t)
	tpl := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, true)
	path := "/api/templates/" + tpl.ID + "/save"

	resp := e.do(t, httptest.NewRequest(fiber.MethodPost, path, nil), e.bob)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, path, nil), e.bob)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = e.get(t, "/api/templates/"+tpl.ID+"/saved", e.bob)
	assert.JSONEq(t, `{"isSaved":true}`, string(readBody(t, resp)))

	resp = e.get(t, "/api/templates/saved", e.bob)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var saved []models.SavedTemplate
	decodeData(t, resp, &saved)
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].Template)
	assert.Equal(t, "Business Plan", saved[0].Template.Title)

	// bookmarking never forks
	count, err := e.services.Repos.Copy.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	resp = e.do(t, httptest.NewRequest(fiber.MethodDelete, path, nil), e.bob)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = e.do(t, httptest.NewRequest(fiber.MethodDelete, path, nil), e.bob)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = e.do(t, httptest.NewRequest(fiber.MethodPost, "/api/templates/missing/save", nil), e.bob)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/api/admin/dashboard", e.alice)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "admin_required", decode(t, resp).Error)

	resp = e.get(t, "/api/admin/dashboard", e.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var dash map[string]interface{}
	decodeData(t, resp, &dash)
	assert.EqualValues(t, 3, dash["total_users"])
	assert.EqualValues(t, 1, dash["premium_users"])

	resp = e.get(t, "/api/admin/users?page=1", e.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var users []models.User
	decodeData(t, resp, &users)
	assert.Len(t, users, 3)

	// promoting pins the premium flag whatever is sent
	resp = e.sendJSON(t, fiber.MethodPut, "/api/admin/users/"+e.bob.ID, fiber.Map{"role": models.ROLE_SUPER_ADMIN, "isPremium": false}, e.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var bob models.User
	decodeData(t, resp, &bob)
	assert.Equal(t, models.ROLE_SUPER_ADMIN, bob.Role)
	assert.True(t, bob.IsPremium)

	resp = e.sendJSON(t, fiber.MethodPut, "/api/admin/users/"+e.alice.ID, fiber.Map{"role": "owner"}, e.admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = e.sendMultipart(t, fiber.MethodPost, "/api/admin/templates", map[string]string{
		"title":        "Resume",
		"category":     "cv",
		"mainCategory": models.MainCategoryResume,
	}, "", nil, e.admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminTemplateUpdateAndDelete(t *testing.T) {
	e := newTestEnv(t)
	tpl := e.seedTemplate(t, "Business Plan", "plan.pdf", planPDF, false)
	cp, _, err := e.services.Copies.EnsureCopy(context.Background(), e.alice, tpl.ID)
	require.NoError(t, err)

	resp := e.sendMultipart(t, fiber.MethodPut, "/api/admin/templates/"+tpl.ID, map[string]string{
		"title":     "Business Plan 2025",
		"isPremium": "true",
	}, "", nil, e.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated models.Template
	decodeData(t, resp, &updated)
	assert.Equal(t, "Business Plan 2025", updated.Title)
	assert.True(t, updated.IsPremium)
	stored, err := e.services.Repos.Template.GetByID(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.FilePath, stored.FilePath)
	exists, err := e.store.Exists(context.Background(), tpl.FilePath)
	require.NoError(t, err)
	assert.True(t, exists)

	resp = e.sendMultipart(t, fiber.MethodPut, "/api/admin/templates/"+tpl.ID, nil, "plan-v2.pdf", editPDF, e.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeData(t, resp, &updated)
	assert.Equal(t, "plan-v2.pdf", updated.FileName)
	exists, err = e.store.Exists(context.Background(), tpl.FilePath)
	require.NoError(t, err)
	assert.False(t, exists)

	resp = e.do(t, httptest.NewRequest(fiber.MethodDelete, "/api/admin/templates/"+tpl.ID, nil), e.admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.get(t, "/api/templates/"+tpl.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// the copy survives with its own file
	resp = e.get(t, "/api/copies/"+cp.ID+"/download", e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, planPDF, readBody(t, resp))
}

func TestLoginStatus(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/api/auth/login/success", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.get(t, "/api/auth/login/success", e.alice)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Success bool        `json:"success"`
		User    models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "alice@example.com", body.User.Email)

	resp = e.get(t, "/api/auth/login/failed", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Login failed", decode(t, resp).Message)

	resp = e.get(t, "/api/auth/check-premium", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = e.get(t, "/api/auth/check-premium", e.admin)
	assert.JSONEq(t, `{"isPremium":true}`, string(readBody(t, resp)))
}
