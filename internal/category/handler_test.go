package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-bot/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-bot/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-bot/internal/transport"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    *categoryPostgres.CategoryRepository
		handler *category.Handler
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&categoryDatamodel.ExpenseCategory{})).To(Succeed())

		repo = categoryPostgres.NewCategoryRepository(db)
		service := category.NewService(repo, slogger)
		handler = category.NewHandler(transport.NewBaseHandler(slogger), service)

		ctx := context.Background()
		Expect(repo.Create(ctx, category.NewCategory("Transport", "Fuel, taxi and delivery", nil))).To(Succeed())
		Expect(repo.Create(ctx, category.NewCategory("Materials", "Construction materials", nil))).To(Succeed())
		Expect(db.Model(&categoryDatamodel.ExpenseCategory{}).
			Create(map[string]interface{}{"name": "Retired", "description": "Old", "is_active": false}).Error).To(Succeed())
	})

	It("should handle GET /categories request successfully", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		w := httptest.NewRecorder()

		handler.GetCategories(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())

		names := make([]string, len(response.Categories))
		for i, cat := range response.Categories {
			names[i] = cat.Name
		}
		Expect(names).To(ConsistOf("Transport", "Materials"))
	})

	It("should create a category on POST /categories", func() {
		body := strings.NewReader(`{"name":"Office","description":"Paper and toner"}`)
		req := httptest.NewRequest(http.MethodPost, "/categories", body)
		w := httptest.NewRecorder()

		handler.AddCategory(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created category.Category
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).To(BeNumerically(">", 0))
		Expect(created.Name).To(Equal("Office"))
	})

	It("should answer a duplicate with 409", func() {
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Transport"}`))
		w := httptest.NewRecorder()

		handler.AddCategory(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should answer malformed JSON with 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":`))
		w := httptest.NewRecorder()

		handler.AddCategory(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
